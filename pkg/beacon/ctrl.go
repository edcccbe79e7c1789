package beacon

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	ctrlTimeout  = 2 * time.Second
	maxReplySize = 4096
	replyFail    = "FAIL"
)

// ErrCommandFailed is returned when hostapd answers FAIL
var ErrCommandFailed = errors.New("hostapd rejected command")

// Requester sends control commands to hostapd
type Requester interface {
	Request(cmd string) (string, error)
	Close() error
}

// Ctrl is a client of the hostapd control interface socket
type Ctrl struct {
	conn  *net.UnixConn
	local string
	mutex *sync.Mutex
}

// DialCtrl connects to the hostapd control socket at path, e.g. /var/run/hostapd/wlan0
func DialCtrl(path string) (*Ctrl, error) {
	local := filepath.Join(os.TempDir(), "rid_ctrl_"+uuid.New().String()[:8])
	laddr := &net.UnixAddr{Name: local, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", laddr, raddr)
	if err != nil {
		os.Remove(local)
		return nil, errors.Wrap(err, "DialUnix issue")
	}
	return &Ctrl{conn: conn, local: local, mutex: &sync.Mutex{}}, nil
}

// Request sends cmd and returns the trimmed reply
func (c *Ctrl) Request(cmd string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.conn.SetDeadline(time.Now().Add(ctrlTimeout)); err != nil {
		return "", err
	}
	if _, err := c.conn.Write([]byte(cmd)); err != nil {
		return "", errors.Wrap(err, "ctrl write issue")
	}
	buf := make([]byte, maxReplySize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return "", errors.Wrap(err, "ctrl read issue")
	}
	reply := strings.TrimSpace(string(buf[:n]))
	if strings.HasPrefix(reply, replyFail) {
		return reply, errors.Wrap(ErrCommandFailed, commandName(cmd))
	}
	return reply, nil
}

func (c *Ctrl) Close() error {
	err := c.conn.Close()
	os.Remove(c.local)
	return err
}

func commandName(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) > 1 && fields[0] == "SET" {
		return fields[0] + " " + fields[1]
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return cmd
}
