package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/game"
)

// Listener accepts TCP connections and hands each one to a
// ClientSession. Failing to bind is the one fatal condition; runtime
// accept errors are logged and the loop keeps serving.
type Listener struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration

	hub      *Hub
	registry *game.Registry
	boards   LeaderboardReader
	log      zerolog.Logger
}

func NewListener(addr string, readTimeout, writeTimeout time.Duration, hub *Hub, registry *game.Registry, boards LeaderboardReader, log zerolog.Logger) *Listener {
	return &Listener{
		addr:         addr,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		hub:          hub,
		registry:     registry,
		boards:       boards,
		log:          log.With().Str("component", "listener").Logger(),
	}
}

// Run binds the endpoint and accepts until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", l.addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	l.log.Info().Str("addr", l.addr).Msg("accepting connections")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Error().Err(err).Msg("accept failed")
			continue
		}

		cs := NewClientSession(
			newTCPConn(conn, l.readTimeout, l.writeTimeout),
			l.hub, l.registry, l.boards, l.log,
		)
		l.hub.Add(cs)
		go cs.Run()
	}
}
