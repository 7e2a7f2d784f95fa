package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if u := a.session.CurrentUser(); u != nil {
		return fmt.Sprintf("(%s %s)", u.Username, u.Role)
	}
	if a.lockout.Locked(context.Background()) {
		return "(locked)"
	}
	return "(anonymous)"
}

// Root runs the interactive loop against stdin until exit or EOF.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Command Center console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
