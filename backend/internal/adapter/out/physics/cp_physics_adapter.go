package physics

import (
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"stacker/backend/internal/core/domain/entity"
	portPhysics "stacker/backend/internal/core/port/out/physics"
	"stacker/backend/internal/physics"
)

// rigidBody тело Chipmunk вместе с данными, которых нет в 2D
type rigidBody struct {
	body      *cp.Body
	shape     *cp.Shape
	y         float64 // координата вне плоскости симуляции
	mass      float64
	moment    float64
	kinematic bool
}

// CPPhysicsAdapter адаптер для физики на Chipmunk2D.
// Игра плоская: симулируется плоскость x/z, ось y хранится как есть.
// Вектор мира (x, y, z) отображается в вектор Chipmunk (x, z)
type CPPhysicsAdapter struct {
	space      *cp.Space
	bodies     map[entity.Handle]*rigidBody
	handles    map[*cp.Body]entity.Handle
	nextHandle entity.Handle
	config     *physics.PhysicsConfig
	logger     *log.Logger
}

var _ portPhysics.PhysicsPort = (*CPPhysicsAdapter)(nil)

// NewCPPhysicsAdapter создает новый адаптер с текущей конфигурацией физики
func NewCPPhysicsAdapter(logger *log.Logger) *CPPhysicsAdapter {
	if logger == nil {
		logger = log.Default()
	}

	config := physics.GetPhysicsConfig()

	space := cp.NewSpace()
	space.Iterations = uint(config.Iterations)
	space.SetGravity(cp.Vector{X: 0, Y: config.Gravity})
	space.SetDamping(config.Damping)
	space.SetCollisionSlop(config.CollisionSlop)

	logger.Printf("[Physics] Создано пространство Chipmunk: гравитация %.2f, итераций %d",
		config.Gravity, config.Iterations)

	return &CPPhysicsAdapter{
		space:   space,
		bodies:  make(map[entity.Handle]*rigidBody),
		handles: make(map[*cp.Body]entity.Handle),
		config:  config,
		logger:  logger,
	}
}

func toCP(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Z()}
}

func fromCP(v cp.Vector, y float64) mgl64.Vec3 {
	return mgl64.Vec3{v.X, y, v.Y}
}

// CreateBody создает тело в пространстве Chipmunk
func (a *CPPhysicsAdapter) CreateBody(req portPhysics.CreateBodyRequest) (entity.Handle, error) {
	if req.Mass < 0 || math.IsNaN(req.Mass) {
		return 0, fmt.Errorf("масса %.2f: %w", req.Mass, portPhysics.ErrInvalidShape)
	}

	var (
		moment float64
		build  func(body *cp.Body) *cp.Shape
	)

	switch req.Shape {
	case portPhysics.ShapeBox:
		width, height := req.Size.X(), req.Size.Z()
		if width <= 0 || height <= 0 {
			return 0, fmt.Errorf("ящик %.2fx%.2f: %w", width, height, portPhysics.ErrInvalidShape)
		}
		moment = cp.MomentForBox(req.Mass, width, height)
		build = func(body *cp.Body) *cp.Shape {
			return cp.NewBox(body, width, height, 0)
		}
	case portPhysics.ShapeCapsule:
		radius, height := req.Size.X(), req.Size.Y()
		if radius <= 0 || height < 0 {
			return 0, fmt.Errorf("капсула r=%.2f h=%.2f: %w", radius, height, portPhysics.ErrInvalidShape)
		}
		bottom := cp.Vector{X: 0, Y: -height / 2}
		top := cp.Vector{X: 0, Y: height / 2}
		moment = cp.MomentForSegment(req.Mass, bottom, top, radius)
		build = func(body *cp.Body) *cp.Shape {
			return cp.NewSegment(body, bottom, top, radius)
		}
	default:
		return 0, fmt.Errorf("форма %s: %w", req.Shape, portPhysics.ErrInvalidShape)
	}

	var body *cp.Body
	if req.Mass == 0 {
		body = cp.NewStaticBody()
	} else {
		body = cp.NewBody(req.Mass, moment)
	}
	body.SetPosition(toCP(req.Position))
	a.space.AddBody(body)

	shape := build(body)
	shape.SetFriction(a.config.Friction)
	shape.SetElasticity(a.config.Elasticity)
	a.space.AddShape(shape)

	a.nextHandle++
	h := a.nextHandle
	a.bodies[h] = &rigidBody{
		body:   body,
		shape:  shape,
		y:      req.Position.Y(),
		mass:   req.Mass,
		moment: moment,
	}
	a.handles[body] = h

	return h, nil
}

// RemoveBody убирает тело и его форму из пространства
func (a *CPPhysicsAdapter) RemoveBody(h entity.Handle) {
	rb, ok := a.bodies[h]
	if !ok {
		return
	}
	a.space.RemoveShape(rb.shape)
	a.space.RemoveBody(rb.body)
	delete(a.handles, rb.body)
	delete(a.bodies, h)
}

// Position возвращает позицию тела
func (a *CPPhysicsAdapter) Position(h entity.Handle) mgl64.Vec3 {
	rb, ok := a.bodies[h]
	if !ok {
		return mgl64.Vec3{}
	}
	return fromCP(rb.body.Position(), rb.y)
}

// SetPosition переносит тело
func (a *CPPhysicsAdapter) SetPosition(h entity.Handle, pos mgl64.Vec3) {
	rb, ok := a.bodies[h]
	if !ok {
		return
	}
	rb.y = pos.Y()
	if rb.body.GetType() != cp.BODY_STATIC {
		rb.body.SetPosition(toCP(pos))
		return
	}

	// Статические формы индексируются один раз при добавлении,
	// поэтому форму перевставляем с новыми границами
	a.space.RemoveShape(rb.shape)
	rb.body.SetPosition(toCP(pos))
	a.space.AddShape(rb.shape)
}

// Rotation возвращает ориентацию тела. Поворот в плоскости x/z - это поворот вокруг -y
func (a *CPPhysicsAdapter) Rotation(h entity.Handle) mgl64.Quat {
	rb, ok := a.bodies[h]
	if !ok {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(rb.body.Angle(), mgl64.Vec3{0, -1, 0})
}

// LinearVelocity возвращает линейную скорость тела
func (a *CPPhysicsAdapter) LinearVelocity(h entity.Handle) mgl64.Vec3 {
	rb, ok := a.bodies[h]
	if !ok {
		return mgl64.Vec3{}
	}
	return fromCP(rb.body.Velocity(), 0)
}

// SetLinearVelocity задает линейную скорость. Компонента y отбрасывается
func (a *CPPhysicsAdapter) SetLinearVelocity(h entity.Handle, v mgl64.Vec3) {
	rb, ok := a.bodies[h]
	if !ok || rb.body.GetType() == cp.BODY_STATIC {
		return
	}
	rb.body.SetVelocity(v.X(), v.Z())
}

// AngularVelocity возвращает угловую скорость вокруг оси y
func (a *CPPhysicsAdapter) AngularVelocity(h entity.Handle) mgl64.Vec3 {
	rb, ok := a.bodies[h]
	if !ok {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{0, -rb.body.AngularVelocity(), 0}
}

// SetAngularVelocity задает угловую скорость. Учитывается только ось y
func (a *CPPhysicsAdapter) SetAngularVelocity(h entity.Handle, v mgl64.Vec3) {
	rb, ok := a.bodies[h]
	if !ok || rb.body.GetType() == cp.BODY_STATIC {
		return
	}
	rb.body.SetAngularVelocity(-v.Y())
}

// SetKinematic переключает тело между кинематическим и динамическим режимом
func (a *CPPhysicsAdapter) SetKinematic(h entity.Handle, kinematic bool) {
	rb, ok := a.bodies[h]
	if !ok || rb.mass == 0 || rb.kinematic == kinematic {
		return
	}

	rb.kinematic = kinematic
	if kinematic {
		rb.body.SetType(cp.BODY_KINEMATIC)
		return
	}

	// При возврате в динамику Chipmunk пересчитывает массу по формам,
	// у наших форм масса не задана, поэтому выставляем ее явно
	rb.body.SetType(cp.BODY_DYNAMIC)
	rb.body.SetMass(rb.mass)
	rb.body.SetMoment(rb.moment)
	rb.body.Activate()
}

// IsKinematic сообщает, управляется ли тело снаружи
func (a *CPPhysicsAdapter) IsKinematic(h entity.Handle) bool {
	rb, ok := a.bodies[h]
	if !ok {
		return false
	}
	return rb.kinematic
}

// Step продвигает симуляцию, дробя большой dt на подшаги
func (a *CPPhysicsAdapter) Step(dt float64) {
	if dt <= 0 {
		return
	}

	steps := 1
	if a.config.MaxSubStep > 0 && dt > a.config.MaxSubStep {
		steps = int(math.Ceil(dt / a.config.MaxSubStep))
	}

	sub := dt / float64(steps)
	for i := 0; i < steps; i++ {
		a.space.Step(sub)
	}
}

// RayTestClosest ищет ближайшую форму на отрезке from→to.
// Координата y луча игнорируется
func (a *CPPhysicsAdapter) RayTestClosest(from, to mgl64.Vec3) portPhysics.RayResult {
	info := a.space.SegmentQueryFirst(toCP(from), toCP(to), 0, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return portPhysics.RayResult{}
	}

	h, ok := a.handles[info.Shape.Body()]
	if !ok {
		return portPhysics.RayResult{}
	}

	y := from.Y() + (to.Y()-from.Y())*info.Alpha
	return portPhysics.RayResult{
		Hit:      true,
		Handle:   h,
		Point:    fromCP(info.Point, y),
		Normal:   fromCP(info.Normal, 0),
		Fraction: info.Alpha,
	}
}

// Contacts возвращает формы, пересекающиеся с формой тела
func (a *CPPhysicsAdapter) Contacts(h entity.Handle) []portPhysics.ContactPoint {
	rb, ok := a.bodies[h]
	if !ok {
		return nil
	}

	var contacts []portPhysics.ContactPoint
	a.space.ShapeQuery(rb.shape, func(shape *cp.Shape, points *cp.ContactPointSet) {
		other, ok := a.handles[shape.Body()]
		if !ok || other == h {
			return
		}

		contact := portPhysics.ContactPoint{
			Other:  other,
			Normal: fromCP(points.Normal, 0),
		}
		if points.Count > 0 {
			contact.Point = fromCP(points.Points[0].PointA, rb.y)
			contact.Depth = -points.Points[0].Distance
		}
		contacts = append(contacts, contact)
	})

	return contacts
}

// BodyCount возвращает число тел в симуляции
func (a *CPPhysicsAdapter) BodyCount() int {
	return len(a.bodies)
}

// Close удаляет все тела
func (a *CPPhysicsAdapter) Close() error {
	for h := range a.bodies {
		a.RemoveBody(h)
	}
	a.logger.Printf("[Physics] Пространство Chipmunk закрыто")
	return nil
}
