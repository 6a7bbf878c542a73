package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cprates/devd"
	"github.com/cprates/devd/config"
	"github.com/cprates/devd/devdb"
	"github.com/cprates/devd/sysfs"

	log "github.com/sirupsen/logrus"
)

var version = "dev"

var (
	configFile string
	devPath    string
	class      string
	sysfsMount string
	dryRun     bool
	netNsPid   int
)

func init() {
	log.StandardLogger().SetNoLock()
	if os.Getenv("DEVD_DEBUG") == "1" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportCaller(true)
	log.SetFormatter(
		&log.TextFormatter{
			DisableLevelTruncation: true,
			FullTimestamp:          true,
			CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
				_, fileName := filepath.Split(frame.File)
				file = " " + fileName + ":" + strconv.Itoa(frame.Line) + " #"
				return
			},
		},
	)
}

var rootCmd = &cobra.Command{
	Use:   "devd",
	Short: "Materialize kernel devices into a userspace /dev namespace",
	Long: `devd takes a kernel device and makes it real in userspace: it creates
the device node, partition nodes and symlink aliases the naming
decision asks for, or renames the interface for network devices. It is
meant to be run by the kernel hotplug mechanism, which passes DEVPATH
and SUBSYSTEM in the environment.`,
}

var addCmd = &cobra.Command{
	Use:   "add [kernel-name]",
	Short: "Add one device to the namespace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && os.Getenv("DEVD_DEBUG") != "1" {
			log.SetLevel(lvl)
		}

		dev, err := deviceFromInvocation(args)
		if err != nil {
			return err
		}

		opts := []devd.Option{
			devd.WithNamer(devd.KernelNamer{
				Mode:  cfg.DefaultMode,
				Owner: cfg.DefaultOwner,
				Group: cfg.DefaultGroup,
			}),
		}

		if cfg.SelinuxContext != "" {
			opts = append(opts, devd.WithLabeler(&devd.SelinuxLabeler{Context: cfg.SelinuxContext}))
		}
		if netNsPid != 0 {
			opts = append(opts, devd.WithNetNsPid(netNsPid))
		}

		db, err := devdb.Open(cfg.DBPath)
		if err != nil {
			// the node is more important than the bookkeeping
			log.Errorf("device database unavailable, adds will not be recorded: %s", err)
		} else {
			defer db.Close()
			opts = append(opts, devd.WithRecorder(db))
		}

		d := devd.New(devd.Conf{Root: cfg.Root, DryRun: dryRun || cfg.DryRun}, opts...)

		attrs := sysfs.Device{MountPoint: sysfsMount, DevPath: dev.DevPath}
		if err := d.AddDevice(dev, attrs); err != nil {
			return err
		}

		// republish the environment for whatever the hotplug chain runs
		// after us
		if dev.ResolvedPath != "" {
			os.Setenv("DEVNAME", dev.ResolvedPath)
			fmt.Printf("DEVNAME=%s\n", dev.ResolvedPath)
		}
		os.Setenv("DEVPATH", dev.DevPath)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("devd", version)
	},
}

// deviceFromInvocation builds the device record from the command line,
// falling back to the hotplug environment the kernel set for us.
func deviceFromInvocation(args []string) (*devd.Device, error) {
	path := devPath
	if path == "" {
		path = os.Getenv("DEVPATH")
	}
	if path == "" {
		return nil, fmt.Errorf("no device path given and DEVPATH not set")
	}

	name := filepath.Base(path)
	if len(args) == 1 {
		name = args[0]
	}

	cls := class
	if cls == "" {
		switch os.Getenv("SUBSYSTEM") {
		case "net":
			cls = "n"
		case "block":
			cls = "b"
		default:
			cls = "c"
		}
	}
	if len(cls) != 1 {
		return nil, fmt.Errorf("invalid device class %q", cls)
	}

	return &devd.Device{
		KernelName: name,
		DevPath:    path,
		Class:      devd.Class(cls[0]),
	}, nil
}

func main() {
	addCmd.Flags().StringVar(&devPath, "devpath", "", "kernel device path, defaults to $DEVPATH")
	addCmd.Flags().StringVar(&class, "class", "", "device class (b|c|u|p|n), defaults from $SUBSYSTEM")
	addCmd.Flags().StringVar(&sysfsMount, "sysfs", sysfs.DefaultMountPoint, "sysfs mount point")
	addCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and log only, mutate nothing")
	addCmd.Flags().IntVar(&netNsPid, "netns-pid", 0, "rename interfaces inside this pid's netns")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file")
	rootCmd.AddCommand(addCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalln("Failed:", err)
	}
}
