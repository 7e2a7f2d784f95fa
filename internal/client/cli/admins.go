package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/opscore/cmdcenter/internal/client/api"
	"github.com/opscore/cmdcenter/internal/client/models"
)

// Admins handles administrator account management, superadmin only:
//
//	admins list                       — all administrator accounts
//	admins create                     — interactive account creation
//	admins update <id> <k=v ...>      — patch role=<role> active=<true|false>
//	admins delete <id>                — remove an account
func (a *App) Admins(ctx context.Context, args []string) error {
	if !a.requireRole(models.RoleSuperadmin) {
		return nil
	}
	if len(args) == 0 {
		fmt.Println("Usage: admins list|create|update|delete")
		return nil
	}

	switch args[0] {
	case "list":
		admins, err := a.api.ListAdmins(ctx)
		if err != nil {
			return err
		}
		for _, adm := range admins {
			active := "active"
			if !adm.IsActive {
				active = "disabled"
			}
			fmt.Printf("%s  %s <%s>  %s  %s\n", adm.ID, adm.Username, adm.Email, adm.Role, active)
		}

	case "create":
		return a.createAdmin(ctx)

	case "update":
		if len(args) < 3 {
			fmt.Println("Usage: admins update <id> role=<role> active=<true|false>")
			return nil
		}
		patch, err := parseAdminPatch(args[2:])
		if err != nil {
			fmt.Println(err.Error())
			return nil
		}
		adm, err := a.api.UpdateAdmin(ctx, args[1], patch)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s: role=%s active=%t\n", adm.Username, adm.Role, adm.IsActive)

	case "delete":
		if len(args) != 2 {
			fmt.Println("Usage: admins delete <id>")
			return nil
		}
		if err := a.api.DeleteAdmin(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Account deleted.")

	default:
		fmt.Println("Unknown admins subcommand:", args[0])
	}
	return nil
}

func (a *App) createAdmin(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	roleText, err := getSimpleText(a.reader, "Enter role (VIEWER/EDITOR/SUPERADMIN)", os.Stdout)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(strings.ToUpper(roleText))
	if err != nil {
		fmt.Println(err.Error())
		return nil
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	adm, err := a.api.CreateAdmin(ctx, api.AdminCreate{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s)\n", adm.Username, adm.ID)
	return nil
}

func parseAdminPatch(args []string) (api.AdminUpdate, error) {
	var patch api.AdminUpdate
	for _, kv := range args {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return api.AdminUpdate{}, fmt.Errorf("expected key=value, got %q", kv)
		}
		switch key {
		case "role":
			role, err := models.ParseRole(strings.ToUpper(value))
			if err != nil {
				return api.AdminUpdate{}, err
			}
			patch.Role = &role
		case "active":
			switch value {
			case "true":
				v := true
				patch.IsActive = &v
			case "false":
				v := false
				patch.IsActive = &v
			default:
				return api.AdminUpdate{}, fmt.Errorf("active must be true or false, got %q", value)
			}
		default:
			return api.AdminUpdate{}, fmt.Errorf("unknown field %q", key)
		}
	}
	return patch, nil
}
