package app

import (
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwbot/pkg/logx"
)

// systemdNotifier speaks sd_notify. Outside systemd (no NOTIFY_SOCKET) every
// call is a silent no-op.
type systemdNotifier struct {
	log      logx.Logger
	notify   func(state string) (bool, error)
	watchdog time.Duration

	warnOnce sync.Once
}

func newSystemdNotifier(log logx.Logger) *systemdNotifier {
	wd, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn("systemd watchdog settings unreadable", logx.Err(err))
		wd = 0
	}
	return &systemdNotifier{
		log:      log,
		notify:   func(state string) (bool, error) { return daemon.SdNotify(false, state) },
		watchdog: wd,
	}
}

func (n *systemdNotifier) Ready()    { n.send(daemon.SdNotifyReady) }
func (n *systemdNotifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Watchdog pings the systemd watchdog when WatchdogSec is configured.
func (n *systemdNotifier) Watchdog() {
	if n.watchdog <= 0 {
		return
	}
	n.send(daemon.SdNotifyWatchdog)
}

// WatchdogInterval is WatchdogSec, or 0 when the watchdog is off.
func (n *systemdNotifier) WatchdogInterval() time.Duration { return n.watchdog }

func (n *systemdNotifier) send(state string) {
	sent, err := n.notify(state)
	if err != nil {
		n.warnOnce.Do(func() {
			n.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		})
		return
	}
	if sent {
		n.log.Debug("sd_notify", logx.String("state", state))
	}
}
