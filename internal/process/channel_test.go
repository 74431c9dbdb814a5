package process

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justinpbarnett/kws/internal/config"
)

func TestProcFDChannelAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	ch, err := NewInputChannel(config.ChannelProcFD, path)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	target, err := os.Readlink(path)
	if err != nil {
		t.Fatalf("alias is not a symlink: %v", err)
	}
	if target != "/proc/self/fd/3" {
		t.Errorf("alias target = %q", target)
	}
	if n := len(ch.ExtraFiles()); n != 1 {
		t.Errorf("ExtraFiles has %d entries, want 1", n)
	}
}

func TestProcFDChannelSupply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	ch, err := NewInputChannel(config.ChannelProcFD, path)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	select {
	case <-ch.Supplied():
		t.Fatal("Supplied closed before Supply")
	default:
	}

	if err := ch.Supply([]byte("println(1)")); err != nil {
		t.Fatalf("Supply: %v", err)
	}
	<-ch.Supplied()

	data, err := io.ReadAll(ch.ExtraFiles()[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "println(1)" {
		t.Errorf("read %q", data)
	}

	if err := ch.Supply([]byte("again")); !errors.Is(err, ErrChannelSupplied) {
		t.Errorf("second Supply err = %v, want ErrChannelSupplied", err)
	}
}

func TestProcFDChannelCloseRemovesAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	ch, err := NewInputChannel(config.ChannelProcFD, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("alias still present after Close: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := ch.Supply([]byte("x")); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Supply after Close err = %v, want ErrChannelClosed", err)
	}
}

func TestChannelReplacesStaleArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, err := NewInputChannel(config.ChannelProcFD, path)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("stale file not replaced, mode %v", info.Mode())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary alias left behind: %v", entries)
	}
}

func TestFIFOChannelSupply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	ch, err := NewInputChannel(config.ChannelFIFO, path)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Fatalf("alias is not a fifo, mode %v", info.Mode())
	}
	if ch.ExtraFiles() != nil {
		t.Errorf("fifo channel should not pass extra files")
	}

	got := make(chan string, 1)
	go func() {
		f, err := os.Open(path)
		if err != nil {
			got <- "open: " + err.Error()
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		got <- string(data)
	}()

	if err := ch.Supply([]byte("println(2)")); err != nil {
		t.Fatalf("Supply: %v", err)
	}
	select {
	case s := <-got:
		if s != "println(2)" {
			t.Errorf("reader got %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader never saw end of input")
	}
}

func TestFIFOChannelCloseUnblocksSupply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.kts")
	ch, err := NewInputChannel(config.ChannelFIFO, path)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- ch.Supply([]byte("nobody reads this")) }()

	<-ch.Supplied()
	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrChannelClosed) {
			t.Errorf("Supply err = %v, want ErrChannelClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Supply still blocked after Close")
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("fifo still present after Close")
	}
}

func TestUnknownChannelKind(t *testing.T) {
	if _, err := NewInputChannel("carrier-pigeon", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected error for unknown channel kind")
	}
}
