package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"canvas-sync/internal/logging"
)

var ErrNotConfigured = errors.New("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")

type Config struct {
	Host           string
	Port           int
	User           string
	Pass           string
	RemoteDir      string
	KnownHostsFile string // empty: host key is not verified
}

// Enabled reports whether replication was asked for at all.
func (c Config) Enabled() bool { return c.Host != "" }

func (c Config) withDefaults() (Config, error) {
	if c.Host == "" || c.User == "" || c.Pass == "" {
		return c, ErrNotConfigured
	}
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	return c, nil
}

// Replicator mirrors local files below a remote directory over one SFTP session.
// The underlying sftp client is safe for concurrent use, so parallel courses share it.
type Replicator struct {
	RemoteDir string

	ssh  *ssh.Client
	sftp *sftp.Client
}

// Dial opens the SSH connection and the SFTP session.
func Dial(ctx context.Context, cfg Config, log logging.Logger) (*Replicator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}

	cb, err := hostKeyCallback(cfg.KnownHostsFile)
	if err != nil {
		return nil, err
	}
	if cfg.KnownHostsFile == "" {
		log.Warn(ctx, "sftp host key is not verified; set SFTP_KNOWN_HOSTS", "host", cfg.Host)
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	d := net.Dialer{Timeout: sshCfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sftp: dial error: %w", err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sftp: handshake: %w", err)
	}
	sshClient := ssh.NewClient(c, chans, reqs)

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}

	log.Info(ctx, "sftp connected", "addr", addr, "remote_dir", cfg.RemoteDir)
	r := NewReplicator(sftpCli, cfg.RemoteDir)
	r.ssh = sshClient
	return r, nil
}

// NewReplicator wraps an already open SFTP session.
func NewReplicator(client *sftp.Client, remoteDir string) *Replicator {
	if remoteDir == "" {
		remoteDir = "/"
	}
	return &Replicator{RemoteDir: remoteDir, sftp: client}
}

func hostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("sftp: known_hosts %s: %w", knownHostsFile, err)
	}
	return cb, nil
}

// Replicate uploads localPath to RemoteDir/rel, creating remote directories as needed.
// rel is slash-separated.
func (r *Replicator) Replicate(ctx context.Context, localPath, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	remotePath := path.Join(r.RemoteDir, path.Clean("/"+rel))
	dir := path.Dir(remotePath)
	if err := r.sftp.MkdirAll(dir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", dir, err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	dst, err := r.sftp.OpenFile(remotePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("sftp: create remote file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("sftp: upload copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("sftp: close remote file: %w", err)
	}
	return nil
}

// Close ends the SFTP session and the SSH connection it runs on.
func (r *Replicator) Close() error {
	err := r.sftp.Close()
	if r.ssh != nil {
		err = errors.Join(err, r.ssh.Close())
	}
	return err
}
