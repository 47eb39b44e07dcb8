package server

import (
	"bufio"
	"net"
	"strings"
	"time"
)

// Conn abstracts one persistent client stream carrying the line
// protocol. Implemented by tcpConn here and wsConn in the gateway;
// tests substitute in-memory pipes.
type Conn interface {
	// ReadLine blocks for the next protocol line, without its trailing
	// newline.
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	c            net.Conn
	r            *bufio.Reader
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newTCPConn(c net.Conn, readTimeout, writeTimeout time.Duration) *tcpConn {
	return &tcpConn{
		c:            c,
		r:            bufio.NewReader(c),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (tc *tcpConn) ReadLine() (string, error) {
	if tc.readTimeout > 0 {
		tc.c.SetReadDeadline(time.Now().Add(tc.readTimeout))
	}
	line, err := tc.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (tc *tcpConn) WriteLine(line string) error {
	if tc.writeTimeout > 0 {
		tc.c.SetWriteDeadline(time.Now().Add(tc.writeTimeout))
	}
	_, err := tc.c.Write([]byte(line + "\n"))
	return err
}

func (tc *tcpConn) Close() error {
	return tc.c.Close()
}

func (tc *tcpConn) RemoteAddr() string {
	return tc.c.RemoteAddr().String()
}
