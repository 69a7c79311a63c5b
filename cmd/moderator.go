package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"landslide-monitor/services"
)

func moderatorCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderator",
		Short: "Manage moderator accounts",
	}

	var username, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a moderator who can verify reports and edit education",
		RunE: rt.withDB(func(ctx context.Context, db *gorm.DB) error {
			mods := services.NewModerators(db, rt.cfg.Auth.JWTSecret, rt.cfg.Auth.TokenTTL)
			mod, err := mods.Create(ctx, username, password)
			if err != nil {
				return fmt.Errorf("create moderator: %w", err)
			}
			rt.log.Info("moderator created", zap.Uint("id", mod.ID), zap.String("username", mod.Username))
			return nil
		}),
	}
	create.Flags().StringVarP(&username, "username", "u", "", "Moderator username")
	create.Flags().StringVarP(&password, "password", "p", "", "Moderator password (at least 8 characters)")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
