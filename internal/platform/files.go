package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
	AndroidCommand  = "am"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
	PDFMimeType        = "application/pdf"
)

// DefaultDocumentFolder is the folder suggested under the user's Documents directory
const DefaultDocumentFolder = "ExecutiveOrders"

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// ErrFileNotFound is returned when a document file is not on disk
var ErrFileNotFound = errors.New("file not found")

// runCommand executes an external command and waits for it. Replaced in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// lookPath reports whether a command is installed. Replaced in tests.
var lookPath = func(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ResolveDocumentPath joins dir and fileName and checks that the result is an existing file
func ResolveDocumentPath(dir, fileName string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", fmt.Errorf("empty file name: %w", ErrFileNotFound)
	}
	if strings.HasPrefix(fileName, "http://") || strings.HasPrefix(fileName, "https://") {
		return "", fmt.Errorf("file name appears to be a URL: %s", fileName)
	}

	path := fileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, fileName)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", absPath, ErrFileNotFound)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", absPath)
	}
	return absPath, nil
}

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	absPath, err := ResolveDocumentPath("", filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin: // macOS
		return runCommand(OpenCommand, MacOSSelectFlag, absPath)
	case OSWindows:
		return runCommand(ExplorerCommand, WindowsSelectParam, absPath)
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := runCommand(XDGOpenCommand, dir); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if lookPath(fm) {
			return runCommand(fm, dir)
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := ResolveDocumentPath("", filePath)
	if err != nil {
		return err
	}
	return openWithDefaultApp(runtime.GOOS, absPath)
}

// openWithDefaultApp dispatches to the viewer launcher for goos
func openWithDefaultApp(goos, absPath string) error {
	switch goos {
	case OSDarwin: // macOS
		return runCommand(OpenCommand, absPath)
	case OSWindows:
		return runCommand(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath)
	case OSLinux:
		return runCommand(XDGOpenCommand, absPath)
	case OSAndroid:
		return runCommand(AndroidCommand, "start", "-a", "android.intent.action.VIEW", "-d", "file://"+absPath, "-t", PDFMimeType)
	default:
		return fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// GetHomeDocumentsDir returns the suggested document directory for the user
func GetHomeDocumentsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Documents", DefaultDocumentFolder), nil
}
