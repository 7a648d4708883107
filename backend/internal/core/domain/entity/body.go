package entity

// Handle непрозрачный идентификатор тела в физическом движке
type Handle uint64

// Body описывает источник трансформации объекта:
// либо физическое тело, либо чисто визуальный объект
type Body struct {
	handle   Handle
	physical bool
}

// Physical создает ссылку на физическое тело
func Physical(h Handle) Body {
	return Body{handle: h, physical: true}
}

// Visual создает объект без физики
func Visual() Body {
	return Body{}
}

// Handle возвращает идентификатор тела, если оно есть
func (b Body) Handle() (Handle, bool) {
	return b.handle, b.physical
}

// IsPhysical сообщает, есть ли у объекта физическое тело
func (b Body) IsPhysical() bool {
	return b.physical
}
