package ebitenview

import (
	"fmt"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/domain/service"
	"stacker/backend/internal/game"
	"stacker/backend/internal/view"
)

const (
	screenWidth  = 640
	screenHeight = 480

	// Проекция плоскости x/z на экран
	pixelsPerUnit = 27.0
	originX       = screenWidth / 2
	originY       = 325.0

	moveStep = 0.25
)

var (
	colorBackground   = color.RGBA{0x1e, 0x22, 0x2b, 0xff}
	colorFallingCrate = color.RGBA{0xe8, 0x91, 0x3a, 0xff}
	colorCrate        = color.RGBA{0x9c, 0x6b, 0x3f, 0xff}
	colorFloor        = color.RGBA{0x55, 0x5b, 0x66, 0xff}
	colorOther        = color.RGBA{0x4a, 0x90, 0xd9, 0xff}
	colorUntextured   = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
)

// Game оконный клиент: клавиатура управляет миром, кадр рисует плоскость x/z
type Game struct {
	ticker *game.GameTicker
	view   *view.WorldView
	logger *log.Logger

	// Состояние для кадра, снимается в Update под блокировкой мира
	score    string
	gameOver bool
}

// NewGame создает клиента. Ticker не должен быть запущен: тиками управляет ebiten
func NewGame(ticker *game.GameTicker, wv *view.WorldView, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	return &Game{ticker: ticker, view: wv, logger: logger}
}

// Run открывает окно и блокирует до его закрытия
func Run(g *Game, tps int) error {
	ebiten.SetWindowTitle("Stacker")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}

func (g *Game) submit(cmd game.Command) {
	if err := g.ticker.Submit(cmd); err != nil {
		g.logger.Printf("[Desktop] Команда %s отброшена: %v", cmd.Name(), err)
	}
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.submit(game.CommandMove{DX: -moveStep})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.submit(game.CommandMove{DX: moveStep})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.submit(game.CommandRelease{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.submit(game.CommandDrop{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.view.ToggleTexture()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.selectUnderCursor()
	}
}

// selectUnderCursor выбирает верхний объект в столбце под курсором
func (g *Game) selectUnderCursor() {
	cx, cy := ebiten.CursorPosition()
	x, z := toWorld(float64(cx), float64(cy))

	g.ticker.View(func(w *service.World) {
		hit := w.GetNearest(mgl64.Vec3{x, 0, 50}, mgl64.Vec3{x, 0, -50})
		if !hit.Hit || hit.ObjectID == entity.NoContact {
			return
		}
		g.logger.Printf("[Desktop] Выбран объект %d (курсор %.2f, %.2f)", hit.ObjectID, x, z)
		g.submit(game.CommandSelect{ID: hit.ObjectID})
	})
}

// Update обрабатывает ввод и продвигает мир на один тик
func (g *Game) Update() error {
	g.handleInput()
	g.ticker.Step()

	g.ticker.View(func(w *service.World) {
		g.view.Tick(w)
		g.score = w.ScoreText()
		g.gameOver = w.IsGameOver()
	})
	return nil
}

func toScreen(x, z float64) (float32, float32) {
	return float32(originX + x*pixelsPerUnit), float32(originY - z*pixelsPerUnit)
}

func toWorld(sx, sy float64) (float64, float64) {
	return (sx - originX) / pixelsPerUnit, (originY - sy) / pixelsPerUnit
}

func colorFor(v *view.ViewObject) color.Color {
	if !v.TextureOn {
		return colorUntextured
	}
	switch v.Object.Base().Kind {
	case entity.KindFallingCrate:
		return colorFallingCrate
	case entity.KindCrate:
		return colorCrate
	case entity.KindFloor:
		return colorFloor
	default:
		return colorOther
	}
}

// Draw рисует объекты прямоугольниками по их размеру
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	for _, v := range g.view.Objects() {
		size := v.Object.Base().Size
		left, top := toScreen(v.Position.X()-size.X()/2, v.Position.Z()+size.Z()/2)
		w := float32(size.X() * pixelsPerUnit)
		h := float32(size.Z() * pixelsPerUnit)
		vector.DrawFilledRect(screen, left, top, w, h, colorFor(v), false)
	}

	ebitenutil.DebugPrintAt(screen, g.score, 8, 8)
	ebitenutil.DebugPrintAt(screen, "<- -> move  SPACE release  D drop  T texture", 8, screenHeight-20)
	if g.gameOver {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER  %s", g.score), screenWidth/2-60, screenHeight/2)
	}
}

// Layout фиксирует логический размер экрана
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
