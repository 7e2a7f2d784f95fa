package cli

import (
	"context"
	"fmt"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Dashboard prints the pending-work summary across the console's domains.
func (a *App) Dashboard(ctx context.Context) error {
	if !a.requireRole(models.RoleViewer) {
		return nil
	}

	stats, err := a.api.DashboardStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Airlock pending:      %d\n", stats.AirlockPending)
	fmt.Printf("Triage pending:       %d\n", stats.TriagePending)
	fmt.Printf("Registry colleges:    %d\n", stats.RegistryTotal)
	fmt.Printf("Seat policy pending:  %d\n", stats.SeatPolicyPending)
	return nil
}
