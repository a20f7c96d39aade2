package export

import (
	"context"
	"net"
	"os"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPTarget describes an FTP delivery destination.
type FTPTarget struct {
	// Host is the server address, port 21 assumed when omitted.
	Host     string
	User     string
	Password string

	// Dir is the remote directory uploads land in.
	Dir string

	Timeout time.Duration
}

// UploadFTP uploads a local file to the target directory, keeping the
// local file name.
func UploadFTP(ctx context.Context, target FTPTarget, localPath string) error {
	host := target.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}
	timeout := target.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	file, err := os.Open(localPath)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", localPath)
	}
	defer file.Close()

	zap.L().Debug("export: ftp connecting", zap.String("host", host))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return eris.Wrap(err, "export: ftp dial")
	}
	defer conn.Quit() //nolint:errcheck

	user := target.User
	if user == "" {
		user = "anonymous"
	}
	if err := conn.Login(user, target.Password); err != nil {
		return eris.Wrap(err, "export: ftp login")
	}

	remote := path.Base(localPath)
	if target.Dir != "" {
		remote = path.Join(target.Dir, remote)
	}
	if err := conn.Stor(remote, file); err != nil {
		return eris.Wrapf(err, "export: ftp store %s", remote)
	}

	zap.L().Info("export: uploaded report", zap.String("host", target.Host), zap.String("remote", remote))
	return nil
}
