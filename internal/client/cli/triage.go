package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Triage handles the identity-candidate subcommands:
//
//	triage list                              — flagged candidates
//	triage link <registry-uuid> <id ...>     — link candidates to a registry entry (editor)
//	triage promote <official name> -- <id ...> — promote candidates into a new college (editor)
func (a *App) Triage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: triage list|link|promote")
		return nil
	}

	switch args[0] {
	case "list":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		candidates, err := a.api.ListCandidates(ctx)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println("No candidates pending.")
			return nil
		}
		for _, cand := range candidates {
			fmt.Printf("%d  %q  (%s)\n", cand.CandidateID, cand.RawName, cand.ReasonFlagged)
		}

	case "link":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) < 3 {
			fmt.Println("Usage: triage link <registry-uuid> <candidate-id> ...")
			return nil
		}
		ids, err := parseCandidateIDs(args[2:])
		if err != nil {
			fmt.Println(err.Error())
			return nil
		}
		if err := a.api.LinkCandidates(ctx, ids, args[1], a.userEmail()); err != nil {
			return err
		}
		fmt.Printf("Linked %d candidate(s).\n", len(ids))

	case "promote":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		name, rest, ok := splitPromoteArgs(args[1:])
		if !ok {
			fmt.Println("Usage: triage promote <official name> -- <candidate-id> ...")
			return nil
		}
		ids, err := parseCandidateIDs(rest)
		if err != nil {
			fmt.Println(err.Error())
			return nil
		}
		if err := a.api.PromoteNewCollege(ctx, ids, name, a.userEmail()); err != nil {
			return err
		}
		fmt.Printf("Promoted %q with %d candidate(s).\n", name, len(ids))

	default:
		fmt.Println("Unknown triage subcommand:", args[0])
	}
	return nil
}

func (a *App) userEmail() string {
	if u := a.session.CurrentUser(); u != nil {
		return u.Email
	}
	return ""
}

func parseCandidateIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// splitPromoteArgs separates the multi-word college name from the candidate
// id list on the "--" marker.
func splitPromoteArgs(args []string) (name string, ids []string, ok bool) {
	for i, s := range args {
		if s == "--" {
			name = strings.Join(args[:i], " ")
			ids = args[i+1:]
			return name, ids, name != "" && len(ids) > 0
		}
	}
	return "", nil, false
}
