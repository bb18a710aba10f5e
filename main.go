package main

import (
	"github.com/nfadhel/tilawah/config"
	"github.com/nfadhel/tilawah/models"
	"github.com/nfadhel/tilawah/routes"
	"github.com/nfadhel/tilawah/services"
	"github.com/nfadhel/tilawah/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ReadingProgress{},
		&models.Streak{},
		&models.UserAchievement{},
		&models.ReadingGoal{},
		&models.ActivityStats{},
	)

	catalog, err := services.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		utils.Sugar.Fatalf("failed to load achievement catalog: %v", err)
	}
	utils.Sugar.Infof("achievement catalog loaded with %d entries", catalog.Len())

	r := routes.SetupRouter(db, catalog)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
