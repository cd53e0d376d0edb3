//go:build windows

package collagelib

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/awused/collage-wallpapers/util/log"
	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows/registry"
)

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

type Monitor struct {
	Width  int
	Height int
	path   string
}

// DesktopWallpaper does not extend IDispatch so this needs to be done manually
type IDesktopWallpaperVtbl struct {
	QueryInterface            uintptr
	AddRef                    uintptr
	Release                   uintptr
	SetWallpaper              uintptr
	GetWallpaper              uintptr
	GetMonitorDevicePathAt    uintptr
	GetMonitorDevicePathCount uintptr
	GetMonitorRECT            uintptr
	SetBackgroundColor        uintptr
	GetBackgroundColor        uintptr
	SetPosition               uintptr
	GetPosition               uintptr
	SetSlideshow              uintptr
	GetSlideshow              uintptr
	SetSlideshowOptions       uintptr
	GetSlideshowOptions       uintptr
	AdvanceSlideshow          uintptr
	GetStatus                 uintptr
	Enable                    uintptr
}

// Pulled from headers
const CLSID = "{C2CF3110-460E-4fc1-B9D0-8A1C0C9CC4BD}"
const IID = "{B92B56A9-8B55-4E14-9A89-0199BBB6F93B}"
const DWPOS_CENTER = uintptr(0)

// Monitor is counted but isn't attached to the computer
const S_FALSE = uintptr(2147500037)

var modole32 = syscall.NewLazyDLL("ole32.dll")
var coTaskMemFree = modole32.NewProc("CoTaskMemFree")

type desktopWallpaper struct {
	obj    *ole.IUnknown
	vtable *IDesktopWallpaperVtbl
}

// COM state is per thread, so everything happens on one locked thread.
func withDesktopWallpaper(fn func(d desktopWallpaper) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := ole.CoInitialize(0)
	if err != nil {
		return err
	}
	defer ole.CoUninitialize()

	desktop, err := ole.CreateInstance(
		ole.NewGUID(CLSID),
		ole.NewGUID(IID))
	if err != nil {
		return err
	}
	defer desktop.Release()

	return fn(desktopWallpaper{
		obj:    desktop,
		vtable: (*IDesktopWallpaperVtbl)(unsafe.Pointer(desktop.RawVTable)),
	})
}

// Lists the attached monitors in the order Windows reports them.
func (d desktopWallpaper) monitors() ([]*Monitor, error) {
	var count uint32

	hr, _, err := syscall.Syscall(
		d.vtable.GetMonitorDevicePathCount,
		2,
		uintptr(unsafe.Pointer(d.obj)),
		uintptr(unsafe.Pointer(&count)),
		0)
	if hr != 0 {
		return nil, fmt.Errorf(
			"Unexpected value from GetMonitorDevicePathCount %d %v", hr, err)
	}

	var monitors []*Monitor
	for i := uint32(0); i < count; i++ {
		var pathOut *[1 << 30]uint16

		hr, _, err = syscall.Syscall(
			d.vtable.GetMonitorDevicePathAt,
			3,
			uintptr(unsafe.Pointer(d.obj)),
			uintptr(i),
			uintptr(unsafe.Pointer(&pathOut)))
		if hr != 0 {
			return nil, fmt.Errorf(
				"Unexpected value from GetMonitorDevicePathAt %d %v", hr, err)
		}

		r := rect{}
		rectHR, _, errno := syscall.Syscall(
			d.vtable.GetMonitorRECT,
			3,
			uintptr(unsafe.Pointer(d.obj)),
			uintptr(unsafe.Pointer(pathOut)),
			uintptr(unsafe.Pointer(&r)))
		if (rectHR != 0 && rectHR != S_FALSE) || errno != 0 {
			return nil, fmt.Errorf(
				"Unexpected value from GetMonitorRECT %d %v", rectHR, errno)
		}
		// Copy the path out so the memory allocated outside of Go's control can
		// be freed immediately
		path := syscall.UTF16ToString(pathOut[:])

		_, _, errno = syscall.Syscall(
			coTaskMemFree.Addr(),
			1,
			uintptr(unsafe.Pointer(pathOut)),
			0,
			0)
		if errno != 0 {
			return nil, fmt.Errorf("Unexpected value from CoTaskMemFree %v", errno)
		}

		if rectHR == S_FALSE {
			continue
		}

		monitors = append(monitors, &Monitor{
			Width:  int(r.right - r.left),
			Height: int(r.bottom - r.top),
			path:   path,
		})
	}

	return monitors, nil
}

func (d desktopWallpaper) monitor(index int) (*Monitor, error) {
	monitors, err := d.monitors()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(monitors) {
		return nil, fmt.Errorf(
			"Monitor %d is not connected, %d monitors detected", index, len(monitors))
	}
	return monitors[index], nil
}

type windowsBackend struct {
	mu sync.Mutex
}

// NewBackend prepares the desktop for per-monitor wallpapers.
func NewBackend(wd *WorkDir) (Backend, error) {
	if err := SetRegistryKeys(); err != nil {
		return nil, err
	}
	return &windowsBackend{}, nil
}

func (b *windowsBackend) Resolution(index int) (int, int, error) {
	var m *Monitor
	err := withDesktopWallpaper(func(d desktopWallpaper) (err error) {
		m, err = d.monitor(index)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return m.Width, m.Height, nil
}

func (b *windowsBackend) SetWallpaper(index int, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	locked, err := checkIfLocked()
	if err != nil {
		return err
	}
	if locked {
		log.Printf("[WARN] Desktop is locked, not setting wallpaper for monitor %d", index)
		return nil
	}

	return withDesktopWallpaper(func(d desktopWallpaper) error {
		m, err := d.monitor(index)
		if err != nil {
			return err
		}

		hr, _, _ := syscall.Syscall(
			d.vtable.SetPosition,
			2,
			uintptr(unsafe.Pointer(d.obj)),
			DWPOS_CENTER,
			0)
		if hr != 0 {
			return fmt.Errorf("Unexpected value from SetPosition %d", hr)
		}

		hr, _, _ = syscall.Syscall(
			d.vtable.SetWallpaper,
			3,
			uintptr(unsafe.Pointer(d.obj)),
			uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(m.path))),
			uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(path))))
		if hr != 0 {
			return fmt.Errorf("Unexpected value from SetWallpaper %d", hr)
		}
		return nil
	})
}

// Stops Windows from recompressing JPEG wallpapers
func SetRegistryKeys() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Control Panel\Desktop`, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	return k.SetDWordValue("JPEGImportQuality", 100)
}

func checkIfLocked() (bool, error) {
	userLib := syscall.NewLazyDLL("user32.dll")
	openInputDesktop := userLib.NewProc("OpenInputDesktop")
	closeDesktop := userLib.NewProc("CloseDesktop")

	desktop, _, _ := openInputDesktop.Call(0,
		0,
		0)
	if desktop == 0 {
		// Failure here means that the user is on a desktop we cannot access
		// That is overwhelmingly likely to be the lock screen
		return true, nil
	}
	ret, _, _ := closeDesktop.Call(desktop)
	if ret == 0 {
		// If we can open the desktop, not being able to close it is a problem.
		return true, errors.New("Failed to close desktop handle")
	}

	return false, nil
}

const ATTACH_PARENT_PROCESS = uintptr(^uint32(0)) // (DWORD)-1

var modkernel32 = syscall.NewLazyDLL("kernel32.dll")
var procAttachConsole = modkernel32.NewProc("AttachConsole")

// Attempts to attach to the parent console if one exists so we can get stdout
// Note that it's impossible to properly redirect stdin
// See https://stackoverflow.com/questions/23743217/
func AttachParentConsole() {
	r, _, _ :=
		syscall.Syscall(procAttachConsole.Addr(), 1, ATTACH_PARENT_PROCESS, 0, 0)

	if r == 0 {
		return
	}

	hout, err := syscall.GetStdHandle(syscall.STD_OUTPUT_HANDLE)
	if err != nil {
		return
	}
	herr, err := syscall.GetStdHandle(syscall.STD_ERROR_HANDLE)
	if err != nil {
		return
	}

	os.Stdout = os.NewFile(uintptr(hout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(herr), "/dev/stderr")
}
