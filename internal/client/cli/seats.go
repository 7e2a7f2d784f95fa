package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opscore/cmdcenter/internal/client/models"
)

const defaultSeatPageSize = 20

// Seats handles the seat-policy violation subcommands:
//
//	seats list [skip [limit]]   — pending violations, paged
//	seats promote <id>          — promote the bucket into the policy (editor)
//	seats ignore <id>           — mark the violation ignored (editor)
func (a *App) Seats(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: seats list|promote|ignore")
		return nil
	}

	switch args[0] {
	case "list":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		skip, limit := 0, defaultSeatPageSize
		if len(args) > 1 {
			skip, _ = strconv.Atoi(args[1])
		}
		if len(args) > 2 {
			limit, _ = strconv.Atoi(args[2])
		}
		violations, err := a.api.ListSeatViolations(ctx, skip, limit)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Println("No violations pending.")
			return nil
		}
		for _, v := range violations {
			fmt.Printf("%s  %s/%s  %s\n", v.ID, v.ExamCode, v.SeatBucketCode, v.ViolationType)
		}

	case "promote":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) != 2 {
			fmt.Println("Usage: seats promote <violation-id>")
			return nil
		}
		if err := a.api.PromoteSeatBucket(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Bucket promoted.")

	case "ignore":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) != 2 {
			fmt.Println("Usage: seats ignore <violation-id>")
			return nil
		}
		if err := a.api.IgnoreSeatBucket(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Violation ignored.")

	default:
		fmt.Println("Unknown seats subcommand:", args[0])
	}
	return nil
}
