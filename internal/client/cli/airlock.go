package cli

import (
	"context"
	"fmt"

	"github.com/opscore/cmdcenter/internal/client/models"
)

// Airlock handles the ingestion artifact subcommands:
//
//	airlock list               — artifacts awaiting review
//	airlock approve <id ...>   — approve a batch for ingestion (editor)
//	airlock dirty              — re-run ingestion for flagged artifacts (editor)
//	airlock status             — whether a pipeline run is active
func (a *App) Airlock(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: airlock list|approve|dirty|status")
		return nil
	}

	switch args[0] {
	case "list":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		artifacts, err := a.api.ListArtifacts(ctx)
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Println("Airlock is empty.")
			return nil
		}
		for _, art := range artifacts {
			fmt.Printf("%s  %s %d %s  [%s]\n", art.ID, art.ExamCode, art.Year, art.RoundName, art.Status)
		}

	case "approve":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if len(args) < 2 {
			fmt.Println("Usage: airlock approve <artifact-id> ...")
			return nil
		}
		if err := a.api.ApproveArtifacts(ctx, args[1:]); err != nil {
			return err
		}
		fmt.Printf("Approved %d artifact(s).\n", len(args)-1)

	case "dirty":
		if !a.requireRole(models.RoleEditor) {
			return nil
		}
		if err := a.api.TriggerDirtyIngestion(ctx); err != nil {
			return err
		}
		fmt.Println("Dirty ingestion triggered.")

	case "status":
		if !a.requireRole(models.RoleViewer) {
			return nil
		}
		st, err := a.api.IngestionStatus(ctx)
		if err != nil {
			return err
		}
		if st.IsIngesting {
			fmt.Println("Ingestion run in progress.")
		} else {
			fmt.Println("Pipeline idle.")
		}

	default:
		fmt.Println("Unknown airlock subcommand:", args[0])
	}
	return nil
}
