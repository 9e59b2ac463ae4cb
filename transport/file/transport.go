// Package file implements a file/stdout transport for decision events.
package file

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pktwall/pktwall/transport"
)

// FileDriver appends one formatted decision event per line to stdout or
// a log file. SIGHUP reopens the file so external rotation works.
type FileDriver struct {
	path string
	sep  string

	mu   sync.RWMutex
	w    io.Writer
	file *os.File

	q chan bool
}

// Prepare registers the decision log flags.
func (d *FileDriver) Prepare() error {
	flag.StringVar(&d.path, "transport.file", "", "Decision log file (empty for stdout)")
	flag.StringVar(&d.sep, "transport.file.sep", "\n", "Separator between decision events")
	return nil
}

func (d *FileDriver) reopen() error {
	file, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	d.file = file
	d.w = file
	return nil
}

// Init opens the destination and installs the SIGHUP rotation handler.
func (d *FileDriver) Init() error {
	d.q = make(chan bool, 1)

	if d.path == "" {
		d.w = os.Stdout
		return nil
	}

	d.mu.Lock()
	err := d.reopen()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-c:
				d.mu.Lock()
				if err := d.file.Close(); err != nil {
					d.mu.Unlock()
					return
				}
				err := d.reopen()
				d.mu.Unlock()
				if err != nil {
					return
				}
			case <-d.q:
				return
			}
		}
	}()
	return nil
}

// Send appends one decision event and the separator. The event key is
// not written; it only matters to partitioned transports.
func (d *FileDriver) Send(key, data []byte) error {
	d.mu.RLock()
	w := d.w
	d.mu.RUnlock()

	line := data
	if d.sep != "" {
		line = append(append(make([]byte, 0, len(data)+len(d.sep)), data...), d.sep...)
	}
	_, err := w.Write(line)
	return err
}

// Close closes the decision log and stops rotation handling.
func (d *FileDriver) Close() error {
	var closeErr error
	if d.path != "" {
		d.mu.Lock()
		closeErr = d.file.Close()
		d.mu.Unlock()
		signal.Ignore(syscall.SIGHUP)
	}
	close(d.q)
	return closeErr
}

func init() {
	transport.RegisterTransportDriver("file", &FileDriver{})
}
