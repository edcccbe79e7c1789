package gps

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

const watchCommand = `?WATCH={"enable":true,"json":true}` + "\n"

var errNoReport = errors.New("No gps report is ready")

// Source delivers raw position reports
type Source interface {
	// Wait blocks up to timeout until a report can be read
	Wait(timeout time.Duration) (bool, error)
	// Read returns the next report
	Read() ([]byte, error)
	Close() error
}

// GPSD is a Source reading JSON reports from a gpsd daemon
type GPSD struct {
	conn    net.Conn
	reader  *bufio.Reader
	partial []byte
	line    []byte
}

// DialGPSD connects to gpsd at addr and enables JSON watch mode
func DialGPSD(ctx context.Context, addr string) (*GPSD, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "Dial gpsd issue")
	}
	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "WATCH issue")
	}
	return &GPSD{conn: conn, reader: bufio.NewReader(conn)}, nil
}

func (g *GPSD) Wait(timeout time.Duration) (bool, error) {
	if g.line != nil {
		return true, nil
	}
	if err := g.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, err
	}
	line, err := g.reader.ReadBytes('\n')
	if err != nil {
		g.partial = append(g.partial, line...)
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		return false, errors.Wrap(err, "gpsd read issue")
	}
	if len(g.partial) > 0 {
		line = append(g.partial, line...)
		g.partial = nil
	}
	g.line = line
	return true, nil
}

func (g *GPSD) Read() ([]byte, error) {
	if g.line == nil {
		return nil, errNoReport
	}
	line := g.line
	g.line = nil
	return line, nil
}

func (g *GPSD) Close() error { return g.conn.Close() }
