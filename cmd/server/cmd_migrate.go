package main

import (
	"fmt"

	"github.com/iiuc-platform/interview-service/internal/config"
	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/pkg"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Job{},
		&models.Interview{},
		&models.InterviewSession{},
		&models.InterviewQuestion{},
		&models.AttentionLog{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}
