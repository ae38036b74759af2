package main

import (
	"time"

	"github.com/openedu/studyhub/config"
	"github.com/openedu/studyhub/models"
	"github.com/openedu/studyhub/routes"
	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/storage"
	"github.com/openedu/studyhub/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Resource{},
		&models.ResourceDailyView{},
		&models.ResourceLike{},
		&models.Bookmark{},
		&models.EngagementEvent{},
	)

	files := storage.NewLocalFileStore(cfg.UploadDir)
	r := routes.SetupRouter(db, files)

	// Purge resources left in the trash beyond the retention period (best-effort)
	lifecycle := services.NewLifecycleService(db, files, utils.Sugar)
	utils.StartTrashSweeper(lifecycle, time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
