package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/browser"
	"github.com/stackit-qa/stackit-client/internal/metrics"
	"github.com/stackit-qa/stackit-client/internal/session"
)

// DefaultPollInterval is how often DoWatchNotifications checks the unread count.
const DefaultPollInterval = 30 * time.Second

var openURL = browser.OpenURL

// DoNotifications prints every notification, marking them read when markRead is set.
func DoNotifications(ctx context.Context, rt *Runtime, markRead bool, options *Options) error {
	items, err := rt.API.Notifications.List(ctx)
	if err != nil {
		return err
	}
	out := options.out()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No notifications")
		return nil
	}
	for _, n := range items {
		marker := "*"
		if read, _ := n["is_read"].(bool); read {
			marker = " "
		}
		_, _ = fmt.Fprintf(out, "%s #%v %v (%v)\n", marker, n["id"], n["message"], n["created_at"])
		if !markRead || marker == " " {
			continue
		}
		id, ok := n["id"].(float64)
		if !ok {
			continue
		}
		if err = rt.API.Notifications.MarkRead(ctx, int(id)); err != nil {
			return err
		}
	}
	return nil
}

// DoOpenNotification marks a notification read and opens its link in the browser.
func DoOpenNotification(ctx context.Context, rt *Runtime, id int, options *Options) error {
	items, err := rt.API.Notifications.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range items {
		if nid, _ := n["id"].(float64); int(nid) != id {
			continue
		}
		link, _ := n["link"].(string)
		target, errLink := browser.ResolveLink(rt.Config.WebURL, link)
		if errLink != nil {
			return errLink
		}
		if err = rt.API.Notifications.MarkRead(ctx, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(options.out(), "Opening %s\n", target)
		return openURL(target)
	}
	return fmt.Errorf("notification #%d not found", id)
}

// DoWatchNotifications polls the unread count until ctx ends or the session is invalidated.
// Invalidations arrive in-process, or over Redis streams when session events are shared, so
// a logout in another process sharing the store also stops the watch. When the config sets
// metrics-addr, Prometheus metrics are served there meanwhile.
func DoWatchNotifications(ctx context.Context, rt *Runtime, interval time.Duration, options *Options) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	started := time.Now().Add(-time.Second)

	events, err := subscribeSessionEvents(ctx, rt)
	if err != nil {
		return err
	}

	if addr := rt.Config.MetricsAddr; addr != "" {
		stop, errServe := serveMetrics(rt, addr)
		if errServe != nil {
			return errServe
		}
		defer stop()
	}

	out := options.out()
	profile := rt.Store.Profile()
	last := -1
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		count, errCount := rt.API.Notifications.UnreadCount(ctx)
		switch {
		case errCount != nil && ctx.Err() != nil:
			return nil
		case errCount != nil:
			log.WithError(errCount).Warn("failed to poll notifications")
		case count != last:
			_, _ = fmt.Fprintf(out, "%d unread notification(s)\n", count)
			last = count
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-events:
				if !ok {
					return nil
				}
				msg.Ack()
				ev, errDecode := session.Decode(msg)
				if errDecode != nil {
					log.WithError(errDecode).Warn("ignoring malformed session event")
					continue
				}
				if ev.Profile != profile || ev.At.Before(started) {
					continue
				}
				return fmt.Errorf("session ended: %s", ev.Reason)
			case <-ticker.C:
				break wait
			}
		}
	}
}

func subscribeSessionEvents(ctx context.Context, rt *Runtime) (<-chan *message.Message, error) {
	if rt.EventSubscriber != nil {
		events, err := rt.EventSubscriber.Subscribe(ctx, rt.Config.SessionEvents.Topic)
		if err != nil {
			return nil, fmt.Errorf("subscribe to session events: %w", err)
		}
		return events, nil
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, session.NewLoggerAdapter(nil))
	go func() {
		<-ctx.Done()
		rt.Notifier.AttachPublisher(nil, "")
		_ = pubSub.Close()
	}()
	events, err := pubSub.Subscribe(ctx, session.DefaultTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to session events: %w", err)
	}
	rt.Notifier.AttachPublisher(pubSub, session.DefaultTopic)
	return events, nil
}

func serveMetrics(rt *Runtime, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(rt.Registry))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if errServe := server.Serve(listener); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			log.WithError(errServe).Error("metrics server stopped")
		}
	}()
	log.Infof("serving metrics on http://%s/metrics", listener.Addr())
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}, nil
}
