package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommand 各平台打开链接的命令
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上也可用
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenBrowser 打开默认浏览器，不等待进程退出
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("open browser with %s: %w", name, err)
	}
	return nil
}

// FindAvailablePort 从 startPort 开始找第一个可监听的端口，最多尝试 attempts 次
func FindAvailablePort(startPort, attempts int) (int, error) {
	for port := startPort; port < startPort+attempts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in [%d, %d)", startPort, startPort+attempts)
}
