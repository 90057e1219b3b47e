package main

import (
	"context"
	"fmt"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/j0lvera/roastbot/internal/bot"
	"github.com/j0lvera/roastbot/internal/config"
	"github.com/j0lvera/roastbot/internal/log"
	"github.com/spf13/cobra"
)

const webhookCallTimeout = 15 * time.Second

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect or change the Telegram webhook registration",
	}

	cmd.AddCommand(
		webhookInfoCmd(),
		webhookDeleteCmd(),
	)

	return cmd
}

func webhookInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the webhook Telegram currently delivers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTelegram(func(ctx context.Context, tg *tbot.Bot) error {
				info, err := tg.GetWebhookInfo(ctx)
				if err != nil {
					return fmt.Errorf("get webhook info: %w", err)
				}
				if info.URL == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "no webhook registered (polling)")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered: yes\npending updates: %d\nlast error: %s\n",
					info.PendingUpdateCount, info.LastErrorMessage)
				return nil
			})
		},
	}
}

func webhookDeleteCmd() *cobra.Command {
	var dropPending bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook so the bot can poll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTelegram(func(ctx context.Context, tg *tbot.Bot) error {
				if _, err := tg.DeleteWebhook(ctx, &tbot.DeleteWebhookParams{DropPendingUpdates: dropPending}); err != nil {
					return fmt.Errorf("delete webhook: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Discard updates Telegram is still holding")

	return cmd
}

func withTelegram(fn func(ctx context.Context, tg *tbot.Bot) error) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	tg, err := bot.NewTelegram(cfg, log.NewLogger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookCallTimeout)
	defer cancel()

	return fn(ctx, tg)
}
