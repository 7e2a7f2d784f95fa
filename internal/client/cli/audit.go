package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opscore/cmdcenter/internal/client/models"
)

const defaultAuditLimit = 50

// Audit prints the most recent audit-trail events. An optional argument
// overrides the default limit.
func (a *App) Audit(ctx context.Context, args []string) error {
	if !a.requireRole(models.RoleViewer) {
		return nil
	}

	limit := defaultAuditLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Println("Usage: audit [limit]")
			return nil
		}
		limit = n
	}

	events, err := a.api.ListAuditEvents(ctx, limit)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("%s  %s  %s\n", ev.CreatedAt, ev.AdminID, ev.Action)
	}
	return nil
}
