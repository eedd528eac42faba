package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/mjwhitta/cli"

	"github.com/hwprobe/winraw/pkg/debug"
	"github.com/hwprobe/winraw/pkg/smbios"
)

// Version info
const Version = "0.1.0"

// Colors for output
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

func info_(format string, args ...interface{}) {
	fmt.Printf(colorCyan+"[*]"+colorReset+" "+format+"\n", args...)
}

func success_(format string, args ...interface{}) {
	fmt.Printf(colorGreen+"[+]"+colorReset+" "+format+"\n", args...)
}

func error_(format string, args ...interface{}) {
	fmt.Printf(colorRed+"[!]"+colorReset+" "+format+"\n", args...)
}

func main() {
	var (
		file    string
		raw     bool
		verbose bool
	)

	// Configure CLI
	cli.Align = true
	cli.Banner = "smbiosdump [OPTIONS]"
	cli.Info("Decode SMBIOS firmware tables from the local system or a dump file")

	// Define flags
	cli.Flag(&file, "f", "file", "", "Parse a raw RSMB dump file instead of the live system")
	cli.Flag(&raw, "r", "raw", false, "Hex-dump every structure")
	cli.Flag(&verbose, "v", "verbose", false, "Verbose output")

	cli.Parse()

	debug.Verbose = verbose

	table, err := loadTable(file)
	if err != nil {
		error_("Failed to load SMBIOS table: %v", err)
		os.Exit(1)
	}

	hdr := table.Header()
	info_("SMBIOS %d.%d, structure table %d bytes",
		hdr.MajorVersion, hdr.MinorVersion, hdr.Length)

	printBios(table)
	printSys(table)
	printBaseboard(table)

	if raw {
		if err := printRaw(table); err != nil {
			error_("Raw dump failed: %v", err)
			os.Exit(1)
		}
	}
}

func loadTable(file string) (*smbios.Table, error) {
	if file == "" {
		debug.Printf("querying platform firmware interface\n")
		return smbios.FromSystem()
	}
	debug.Printf("reading dump file %s\n", file)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return smbios.FromBytes(data)
}

func printBios(table *smbios.Table) {
	bios, err := table.BiosInfo()
	if err != nil {
		error_("BIOS info: %v", err)
		return
	}
	success_("BIOS: %s %s (%s), ROM size code 0x%02X",
		bios.Vendor, bios.Version, bios.ReleaseDate, bios.ROMSize)
}

func printSys(table *smbios.Table) {
	sys, err := table.SysInfo()
	if err != nil {
		error_("System info: %v", err)
		return
	}
	success_("System: %s %s %s, serial %s", sys.Manufacturer, sys.Product,
		sys.Version, sys.SerialNumber)
	success_("UUID: %s", sys.UUID)
}

func printBaseboard(table *smbios.Table) {
	board, err := table.BaseboardInfo()
	if err != nil {
		error_("Baseboard info: %v", err)
		return
	}
	if board == nil {
		info_("No baseboard structure present")
		return
	}
	success_("Baseboard: %s %s %s, serial %s", board.Manufacturer,
		board.Product, board.Version, board.SerialNumber)
}

func printRaw(table *smbios.Table) error {
	structs, err := table.Structures()
	if err != nil {
		return err
	}
	for _, s := range structs {
		fmt.Printf("\nType %3d  Length %3d  Handle 0x%04X\n", s.Type, s.Length, s.Handle)
		if len(s.Formatted) > 0 {
			fmt.Print(hex.Dump(s.Formatted))
		}
		if len(s.Strings) > 0 {
			fmt.Printf("Strings: %s\n", strings.Join(s.Strings, " | "))
		}
	}
	return nil
}
