package main

import (
	"flag"
	"io"
	"log"
	"os"

	cpadapter "stacker/backend/internal/adapter/out/physics"
	"stacker/backend/internal/core/domain/service"
	"stacker/backend/internal/game"
	"stacker/backend/internal/view"
	"stacker/backend/internal/view/ebitenview"
)

func main() {
	var (
		tps   = flag.Int("tps", 60, "Частота тиков в секунду")
		quiet = flag.Bool("quiet", false, "Не писать лог мира")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	worldLogger := logger
	if *quiet {
		worldLogger = log.New(io.Discard, "", 0)
	}

	physicsAdapter := cpadapter.NewCPPhysicsAdapter(worldLogger)
	defer physicsAdapter.Close()

	world := service.NewWorld(physicsAdapter, service.DefaultStackConfig(), worldLogger)

	// Отображение подписывается до создания сцены, чтобы получить все объекты
	worldView := view.NewWorldView(world.Events())
	defer worldView.Close()
	world.LoadWorld()

	ticker := game.NewGameTicker(*tps, world, worldLogger)

	if err := ebitenview.Run(ebitenview.NewGame(ticker, worldView, logger), *tps); err != nil {
		logger.Fatalf("[Desktop] Ошибка окна: %v", err)
	}
}
