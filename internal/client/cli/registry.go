package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Registry handles the canonical-college subcommands:
//
//	registry list                        — canonical colleges and alias counts
//	registry alias <college-id> <text>   — promote an alias to canonical name (editor)
func (a *App) Registry(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: registry list|alias")
		return nil
	}

	switch args[0] {
	case "list":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		colleges, err := a.api.ListRegistry(ctx)
		if err != nil {
			return err
		}
		for _, col := range colleges {
			fmt.Printf("%s  %s (%s), %d alias(es)\n", col.CollegeID, col.CanonicalName, col.StateCode, len(col.Aliases))
		}

	case "alias":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) < 3 {
			fmt.Println("Usage: registry alias <college-id> <alias text>")
			return nil
		}
		alias := strings.Join(args[2:], " ")
		if err := a.api.PromoteAlias(ctx, args[1], alias); err != nil {
			return err
		}
		fmt.Printf("Promoted alias %q.\n", alias)

	default:
		fmt.Println("Unknown registry subcommand:", args[0])
	}
	return nil
}
