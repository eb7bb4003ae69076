//go:build ignore

// build.go - oddscli build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, ingest, export, inspect, removelast, web, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const module = "oddscli"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Release bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// Executables under cmd/
	executables = []string{"ingest", "export", "inspect", "removelast", "web"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s, run build.go from the module root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, GOOS: *goos, GOARCH: *goarch}

	switch *target {
	case "all":
		buildAll(ctx)
	case "clean":
		clean(ctx.Verbose)
	case "test":
		runTests(ctx.Verbose)
	case "release":
		ctx.Release = true
		runTests(ctx.Verbose)
		buildAll(ctx)
	default:
		if !isExecutable(*target) {
			showHelp()
			os.Exit(1)
		}
		buildExecutable(*target, ctx)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "          oddscli - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func isExecutable(name string) bool {
	for _, e := range executables {
		if e == name {
			return true
		}
	}
	return false
}

// Build all executables
func buildAll(ctx *BuildContext) {
	printInfo("Building all executables...")
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}
	for _, name := range executables {
		buildExecutable(name, ctx)
	}
	copyConfigFiles(ctx.Verbose)
	printSuccess("All executables built successfully!")
}

// Build a specific executable
func buildExecutable(name string, ctx *BuildContext) {
	printInfo(fmt.Sprintf("Building %s...", name))

	exeName := name
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(distDir, exeName)

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	if ctx.Release {
		args = append(args, "-trimpath", "-ldflags", "-s -w")
	}
	args = append(args, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(info.Size())/1024/1024))
	}
}

// copyConfigFiles puts a sample configuration next to the executables
func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "configs", "config.example.yaml")
	data, err := os.ReadFile(src)
	if err != nil {
		printWarning(fmt.Sprintf("No sample configuration copied: %v", err))
		return
	}
	dest := filepath.Join(distDir, "config.example.yaml")
	if err := os.WriteFile(dest, data, 0644); err != nil {
		printError(fmt.Sprintf("Failed to copy configuration: %v", err))
		return
	}
	if verbose {
		printInfo("Copied " + dest)
	}
}

// Remove build artifacts
func clean(verbose bool) {
	printInfo("Cleaning build artifacts...")
	entries, err := os.ReadDir(distDir)
	if err != nil && !os.IsNotExist(err) {
		printError(fmt.Sprintf("Failed to read %s: %v", distDir, err))
		return
	}
	for _, entry := range entries {
		path := filepath.Join(distDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			printError(fmt.Sprintf("Failed to remove %s: %v", path, err))
			continue
		}
		if verbose {
			printInfo("Removed " + path)
		}
	}
	printSuccess("Build artifacts cleaned")
}

// Run tests
func runTests(verbose bool) {
	printInfo(fmt.Sprintf("Running %s tests...", module))
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func showHelp() {
	names := append([]string(nil), executables...)
	sort.Strings(names)

	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all               Build every executable (default)")
	for _, name := range names {
		fmt.Printf("  %-17s Build %s only\n", name, name)
	}
	fmt.Println("  clean             Remove build artifacts")
	fmt.Println("  test              Run all tests")
	fmt.Println("  release           Test, then build stripped executables")
}
