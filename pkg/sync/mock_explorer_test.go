package sync

import (
	"github.com/Cellebyte/mpsync/pkg/remote"
)

type boardCall struct {
	op         string
	localPath  string
	remotePath string
}

// mockExplorer records every operation issued against the board and returns
// the errors configured per remote path.
type mockExplorer struct {
	calls      []boardCall
	putErrs    map[string]error
	mkdirErrs  map[string]error
	removeErrs map[string]error
	closeErr   error
	closes     int
}

var _ remote.Explorer = &mockExplorer{}

func (m *mockExplorer) Put(localPath, remotePath string) error {
	m.calls = append(m.calls, boardCall{"put", localPath, remotePath})
	return m.putErrs[remotePath]
}

func (m *mockExplorer) Mkdir(remotePath string) error {
	m.calls = append(m.calls, boardCall{op: "mkdir", remotePath: remotePath})
	return m.mkdirErrs[remotePath]
}

func (m *mockExplorer) Remove(remotePath string) error {
	m.calls = append(m.calls, boardCall{op: "rm", remotePath: remotePath})
	return m.removeErrs[remotePath]
}

func (m *mockExplorer) Close() error {
	m.closes++
	return m.closeErr
}

func (m *mockExplorer) SysName() string {
	return "esp32"
}

// indexOf returns the position of the first matching call, or -1.
func (m *mockExplorer) indexOf(op, remotePath string) int {
	for i, call := range m.calls {
		if call.op == op && call.remotePath == remotePath {
			return i
		}
	}
	return -1
}

func (m *mockExplorer) count(op string) (n int) {
	for _, call := range m.calls {
		if call.op == op {
			n++
		}
	}
	return n
}
