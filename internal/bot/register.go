package bot

import (
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/arkade-01/p2pbot/internal/config"
	"github.com/arkade-01/p2pbot/internal/menu"
	tg "github.com/arkade-01/p2pbot/internal/telegram"
	"github.com/arkade-01/p2pbot/internal/telegram/commands"
	"github.com/arkade-01/p2pbot/internal/telegram/middleware"
	"github.com/arkade-01/p2pbot/internal/telegram/router"
)

// buildRegistry declares every command and callback the bot answers.
func buildRegistry(h *Handlers) *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/sell", commands.Command{
		Handler:     h.SellMenu,
		Description: "Sell crypto for fiat",
	})
	reg.RegisterCommand("/verify", commands.Command{
		Handler:     h.VerifyMenu,
		Description: "Verify your bank account",
	})
	reg.RegisterCommand("/buy", commands.Command{
		Handler:     h.Buy,
		Description: "Buy crypto (coming soon)",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Stats,
		Description: "Show your trading stats",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "How to reach support",
	})

	for key, handler := range map[string]tele.HandlerFunc{
		menu.KeyMainMenu: h.MainMenu,
		menu.KeyBuy:      h.Buy,
		menu.KeySell:     h.SellMenu,
		menu.KeyStats:    h.Stats,
		menu.KeyVerify:   h.VerifyMenu,
		menu.KeyHelp:     h.Help,

		menu.KeySellUSDT:     h.SellToken("USDT"),
		menu.KeySellUSDC:     h.SellToken("USDC"),
		menu.KeyChangeRefund: h.ChangeRefund,
		menu.KeyConfirmSell:  h.ConfirmSell,
		menu.KeyCancelSell:   h.CancelSell,

		menu.KeyVerAcc:             h.ListBanks,
		menu.KeyBanksPage:          h.BanksPage,
		menu.KeyPageInfo:           h.PageInfo,
		menu.KeySelectBank:         h.SelectBank,
		menu.KeyConfirmAccount:     h.ConfirmAccount,
		menu.KeyCancelVerification: h.CancelVerification,
		menu.KeyRemAcc:             h.RemoveAccount,
	} {
		_ = reg.RegisterCallback(key, handler)
	}

	return reg
}

// buildRoutes wires commands, callbacks, and free-text dispatch.
func buildRoutes(reg *tg.Registry, h *Handlers) []tg.Route {
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoute(reg, router.TextOptions{
		Session: h.SessionText,
	}))
	return routes
}

// buildMiddlewares assembles the global middleware chain.
func buildMiddlewares(cfg *config.Config) []tg.Middleware {
	var mws []tg.Middleware
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, tg.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}
	return mws
}
