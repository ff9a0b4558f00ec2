package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	"hwbot/internal/runtime/supervisor"
	"hwbot/internal/schedule"
	"hwbot/internal/storage"
	kit "hwbot/internal/transport"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
)

const notifyHistorySize = 50

type App struct {
	env  config.Env
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	target kit.ChatTarget
	store  storage.Store
	notif  *notifier.Service
	poll   *poller.Poller
	sd     *systemdNotifier

	sup *supervisor.Supervisor
}

// New wires every component from the credentials and the loaded settings.
func New(env config.Env, cfgm *config.Manager) (*App, error) {
	cfg := cfgm.Get()
	if cfg == nil {
		return nil, fmt.Errorf("settings not loaded")
	}
	sched, err := cfg.PollSchedule()
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
	ad, err := telegram.New(telegram.Config{
		Token:       env.TelegramToken,
		APIURL:      cfg.Telegram.APIURL,
		SendTimeout: cfg.SendTimeout(),
		// no getMe at boot: a network outage must not keep the bot from starting
		Offline: true,
	}, bootLog)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	target := chatTarget(env, cfg)
	logSvc, log := logx.New(logConfig(cfg), ad, target)
	appLog := log.With(logx.String("comp", "app"))

	store, err := storage.Open(storageConfig(cfg), log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	if store != nil {
		appLog.Info("storage enabled", logx.String("driver", cfg.Storage.Driver), logx.String("path", cfg.Storage.Path))
	}

	notif := notifier.New(notifier.Config{
		Target:      target,
		SendTimeout: cfg.SendTimeout(),
		HistorySize: notifyHistorySize,
	}, ad, store, log.With(logx.String("comp", "notifier")))

	api := practicum.New(practicum.Config{
		Endpoint: cfg.Poll.Endpoint,
		Token:    env.PracticumToken,
		Timeout:  cfg.RequestTimeout(),
	}, log.With(logx.String("comp", "practicum")))

	sd := newSystemdNotifier(log.With(logx.String("comp", "systemd")))

	p := poller.New(poller.Config{
		Schedule:   sched,
		AfterCycle: sd.Watchdog,
	}, api, notif, log.With(logx.String("comp", "poller")))

	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	return &App{
		env:    env,
		cfgm:   cfgm,
		log:    appLog,
		logs:   logSvc,
		target: target,
		store:  store,
		notif:  notif,
		poll:   p,
		sd:     sd,
	}, nil
}

// Done is closed when the supervisor context is cancelled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.sup.Go("poller", a.poll.Run)

	sub := a.cfgm.Subscribe(4)
	a.sup.Go0("settings.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub)
	})
	a.sup.GoRestart("settings.watch", 250*time.Millisecond, 30*time.Second, a.cfgm.Watch)

	a.sd.Ready()
	if wd := a.sd.WatchdogInterval(); wd > 0 {
		if sc, err := a.cfgm.Get().PollSchedule(); err == nil && sc.Kind == schedule.KindInterval && sc.Every > wd {
			a.log.Warn("systemd watchdog is shorter than the poll interval",
				logx.Duration("watchdog", wd), logx.Duration("interval", sc.Every))
		}
	}

	a.log.Info("app started",
		logx.String("chat", a.target.ChatID),
		logx.String("endpoint", a.cfgm.Get().Poll.Endpoint),
		logx.String("settings", a.cfgm.Path()),
	)
	return nil
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Settings) {
	applied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			// coalesce bursts
			for more := true; more; {
				select {
				case newer := <-sub:
					if newer != nil {
						next = newer
					}
				default:
					more = false
				}
			}
			sections, attrs, restart := config.SummarizeChange(applied, next)
			applied = next
			if len(sections) == 0 {
				a.log.Debug("settings reload received, but no effective changes detected")
				continue
			}
			a.logs.Apply(logConfig(next))

			fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
			a.log.Info("settings reloaded", fields...)
			if restart {
				a.log.Warn("settings changed outside logging; restart required for them to take effect")
			}
		}
	}
}

// Stop cancels the poll loop and closes resources. Each step is bounded so
// one component cannot stall shutdown.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	a.sd.Stopping()
	a.sup.Cancel()

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()
		start := time.Now()
		if err := fn(stepCtx); err != nil {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			return
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	}

	step("supervisor", 5*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	step("storage", time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped", logx.Int("notifications_sent", len(a.notif.History())))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return a.sup.Err()
}

func chatTarget(env config.Env, cfg *config.Settings) kit.ChatTarget {
	return kit.ChatTarget{
		ChatID:   strings.TrimSpace(env.TelegramChatID),
		ThreadID: cfg.Telegram.ThreadID,
	}
}

func logConfig(cfg *config.Settings) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func storageConfig(cfg *config.Settings) storage.Config {
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.StorageBusyTimeout(),
	}
}
