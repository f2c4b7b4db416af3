// Package errors provides structured error types for rxtune
// with error codes, categories, and remediation guidance
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error codes for rxtune
// Format: RXTUNE-<CATEGORY><NUMBER>
// Categories: H=Hardware, P=Permission, C=Config, B=Bug
const (
	// Hardware errors (capability fix or fall back to untuned operation)
	ErrCodeMSRUnavailable  ErrorCode = "RXTUNE-H001"
	ErrCodeUnsupportedCPU  ErrorCode = "RXTUNE-H002"
	ErrCodeRegisterRead    ErrorCode = "RXTUNE-H003"
	ErrCodeRegisterWrite   ErrorCode = "RXTUNE-H004"
	ErrCodePartialApply    ErrorCode = "RXTUNE-H005"
	ErrCodeCacheQoSMissing ErrorCode = "RXTUNE-H006"

	// Permission errors (operator fix)
	ErrCodeNotRoot       ErrorCode = "RXTUNE-P001"
	ErrCodeDeviceDenied  ErrorCode = "RXTUNE-P002"
	ErrCodeWritesLocked  ErrorCode = "RXTUNE-P003"

	// Configuration errors (user fix)
	ErrCodeInvalidCores   ErrorCode = "RXTUNE-C001"
	ErrCodeInvalidOption  ErrorCode = "RXTUNE-C002"
	ErrCodeInvalidRegister ErrorCode = "RXTUNE-C003"

	// Internal errors (report to maintainers)
	ErrCodeInvalidState ErrorCode = "RXTUNE-B001"
	ErrCodeLogicError   ErrorCode = "RXTUNE-B002"
)

// Category represents error categories
type Category string

const (
	CategoryHardware   Category = "hardware"
	CategoryPermission Category = "permission"
	CategoryConfig     Category = "configuration"
	CategoryInternal   Category = "internal"
)

// TuneError is a structured error with code, category, and remediation
type TuneError struct {
	Code        ErrorCode
	Category    Category
	Message     string
	Details     string
	Remediation string
	Cause       error
}

// Error implements error interface
func (e *TuneError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += fmt.Sprintf("\n\nDetails:\n  %s", e.Details)
	}
	if e.Remediation != "" {
		msg += fmt.Sprintf("\n\nTo fix:\n  %s", e.Remediation)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *TuneError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for error comparison
func (e *TuneError) Is(target error) bool {
	if t, ok := target.(*TuneError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetails adds details to an error
func (e *TuneError) WithDetails(details string) *TuneError {
	e.Details = details
	return e
}

// WithCause adds an underlying cause
func (e *TuneError) WithCause(cause error) *TuneError {
	e.Cause = cause
	return e
}

// NewHardwareError creates a hardware error
func NewHardwareError(code ErrorCode, message string, remediation string) *TuneError {
	return &TuneError{
		Code:        code,
		Category:    CategoryHardware,
		Message:     message,
		Remediation: remediation,
	}
}

// NewPermissionError creates a permission error
func NewPermissionError(code ErrorCode, message string, remediation string) *TuneError {
	return &TuneError{
		Code:        code,
		Category:    CategoryPermission,
		Message:     message,
		Remediation: remediation,
	}
}

// NewConfigError creates a configuration error
func NewConfigError(code ErrorCode, message string, remediation string) *TuneError {
	return &TuneError{
		Code:        code,
		Category:    CategoryConfig,
		Message:     message,
		Remediation: remediation,
	}
}

// NewInternalError creates an internal error (bugs)
func NewInternalError(code ErrorCode, message string, cause error) *TuneError {
	return &TuneError{
		Code:        code,
		Category:    CategoryInternal,
		Message:     message,
		Cause:       cause,
		Remediation: "This appears to be a bug. Please report it with the full log output.",
	}
}

// Common error constructors for frequently used errors

// MSRUnavailable creates an error for a missing or locked MSR interface
func MSRUnavailable(cause error) *TuneError {
	return &TuneError{
		Code:     ErrCodeMSRUnavailable,
		Category: CategoryHardware,
		Message:  "MSR kernel interface is not available",
		Details:  fmt.Sprintf("Cause: %v", cause),
		Remediation: `This usually means:
  1. The msr kernel module is not loaded
  2. The process lacks root privileges
  3. The kernel rejects MSR writes (CONFIG_X86_MSR or lockdown mode)

To fix:
  1. Load the module with writes enabled:
     sudo modprobe msr allow_writes=on

  2. Run rxtune as root

  3. Mining continues untuned if MSR access stays unavailable.`,
		Cause: cause,
	}
}

// UnsupportedCPU creates an error for CPUs without a tuning preset
func UnsupportedCPU(vendor string) *TuneError {
	return &TuneError{
		Code:     ErrCodeUnsupportedCPU,
		Category: CategoryHardware,
		Message:  "No register preset exists for this CPU",
		Details:  fmt.Sprintf("Vendor: %s", vendor),
		Remediation: `Tuning is only available on AMD Zen family and Intel CPUs.
The workload keeps running with unmodified performance.`,
	}
}

// RegisterReadFailed creates an error for a failed register read
func RegisterReadFailed(reg uint32, core int, cause error) *TuneError {
	return &TuneError{
		Code:     ErrCodeRegisterRead,
		Category: CategoryHardware,
		Message:  fmt.Sprintf("Failed to read register 0x%08x", reg),
		Details:  fmt.Sprintf("Core: %d\nError: %v", core, cause),
		Remediation: `Verify the msr module is loaded and the register is valid:
  sudo modprobe msr
  sudo rdmsr -p 0 <register>`,
		Cause: cause,
	}
}

// RegisterWriteFailed creates an error for a failed register write
func RegisterWriteFailed(reg uint32, core int, cause error) *TuneError {
	return &TuneError{
		Code:     ErrCodeRegisterWrite,
		Category: CategoryHardware,
		Message:  fmt.Sprintf("Failed to write register 0x%08x", reg),
		Details:  fmt.Sprintf("Core: %d\nError: %v", core, cause),
		Remediation: `MSR writes may be rejected even when reads work:
  1. Enable writes: echo on | sudo tee /sys/module/msr/parameters/allow_writes
  2. Check kernel lockdown: cat /sys/kernel/security/lockdown`,
		Cause: cause,
	}
}

// PartialApply creates an error for an apply that failed mid-flight
func PartialApply(core int, cause error) *TuneError {
	return &TuneError{
		Code:     ErrCodePartialApply,
		Category: CategoryHardware,
		Message:  "Register preset was only partially applied",
		Details:  fmt.Sprintf("Failed at core %d: %v", core, cause),
		Remediation: `Original register values were captured before the attempt.
Run restore (or exit rxtune) to write them back.`,
		Cause: cause,
	}
}

// IsRetryable returns false for every tuning error: apply and restore are
// single-shot operations, failed cores are never retried or skipped
func IsRetryable(err error) bool {
	return false
}

// GetCategory returns the error category if available
func GetCategory(err error) Category {
	var tuneErr *TuneError
	if errors.As(err, &tuneErr) {
		return tuneErr.Category
	}
	return ""
}

// GetCode returns the error code if available
func GetCode(err error) ErrorCode {
	var tuneErr *TuneError
	if errors.As(err, &tuneErr) {
		return tuneErr.Code
	}
	return ""
}
