//go:build windows

package platform

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// IPolicyConfigVista is undocumented but stable since Vista; it is the only
// way to change the default endpoint from user mode.
var (
	clsidPolicyConfigVistaClient = ole.NewGUID("{294935CE-F637-4E7C-A41B-AB255460B862}")
	iidPolicyConfigVista         = ole.NewGUID("{568B9108-44BF-40B4-9006-86AFE5B5A620}")
)

const (
	hrNotFound   = 0x80070490 // HRESULT_FROM_WIN32(ERROR_NOT_FOUND)
	hrInvalidArg = 0x80070057
)

type policyConfigVistaVtbl struct {
	ole.IUnknownVtbl
	GetMixFormat          uintptr
	GetDeviceFormat       uintptr
	SetDeviceFormat       uintptr
	GetProcessingPeriod   uintptr
	SetProcessingPeriod   uintptr
	GetShareMode          uintptr
	SetShareMode          uintptr
	GetPropertyValue      uintptr
	SetPropertyValue      uintptr
	SetDefaultEndpoint    uintptr
	SetEndpointVisibility uintptr
}

// setDefaultEndpoint must run on a COM-initialized thread.
func setDefaultEndpoint(id string, roles []Role) error {
	unknown, err := ole.CreateInstance(clsidPolicyConfigVistaClient, iidPolicyConfigVista)
	if err != nil {
		return fmt.Errorf("failed to create policy config: %w: %v", ErrInterfaceUnavailable, err)
	}
	defer unknown.Release()

	vtbl := (*policyConfigVistaVtbl)(unsafe.Pointer(unknown.RawVTable))

	idPtr, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return fmt.Errorf("invalid device id %q: %w", id, ErrDeviceNotFound)
	}

	for _, role := range roles {
		hr, _, _ := syscall.SyscallN(
			vtbl.SetDefaultEndpoint,
			uintptr(unsafe.Pointer(unknown)),
			uintptr(unsafe.Pointer(idPtr)),
			uintptr(role),
		)
		if hr != 0 {
			return hresultError(id, role, uint32(hr))
		}
	}
	return nil
}

func hresultError(id string, role Role, hr uint32) error {
	switch hr {
	case hrNotFound, hrInvalidArg:
		return fmt.Errorf("failed to set %s default to %q: %w (hr=0x%08X)", role, id, ErrDeviceNotFound, hr)
	default:
		return fmt.Errorf("failed to set %s default to %q: %w (hr=0x%08X)", role, id, ErrInterfaceUnavailable, hr)
	}
}

func isHRESULT(err error, hr uint32) bool {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return uint32(oleErr.Code()) == hr
	}
	return false
}
