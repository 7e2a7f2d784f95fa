package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Exams handles the ingestion switchboard subcommands:
//
//	exams list                                  — per-exam ingestion configs
//	exams mode <exam-code> BOOTSTRAP|CONTINUOUS — switch an exam's mode (editor)
func (a *App) Exams(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: exams list|mode")
		return nil
	}

	switch args[0] {
	case "list":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		configs, err := a.api.ListExamConfigs(ctx)
		if err != nil {
			return err
		}
		for _, ec := range configs {
			active := "inactive"
			if ec.IsActive {
				active = "active"
			}
			fmt.Printf("%s  %s  %s\n", ec.ExamCode, ec.IngestionMode, active)
		}

	case "mode":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) != 3 {
			fmt.Println("Usage: exams mode <exam-code> BOOTSTRAP|CONTINUOUS")
			return nil
		}
		mode := strings.ToUpper(args[2])
		if mode != models.IngestionModeBootstrap && mode != models.IngestionModeContinuous {
			fmt.Println("Mode must be BOOTSTRAP or CONTINUOUS.")
			return nil
		}
		if err := a.api.UpdateExamMode(ctx, args[1], mode); err != nil {
			return err
		}
		fmt.Printf("Exam %s switched to %s.\n", args[1], mode)

	default:
		fmt.Println("Unknown exams subcommand:", args[0])
	}
	return nil
}
