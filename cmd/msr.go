package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rxtune/internal/errors"
	"rxtune/internal/msr"
)

var (
	msrCore     int
	msrAllCores bool
	msrMask     string
)

var msrCmd = &cobra.Command{
	Use:   "msr",
	Short: "Read and write model-specific registers directly",
	Long: `Low-level register diagnostics. Useful for verifying a preset value
landed, or for probing a register before adding it to a custom preset.

Registers and values accept Go numeric literals, so hex works as
expected: rxtune msr read 0xC0011020`,
}

var msrReadCmd = &cobra.Command{
	Use:   "read <register>",
	Short: "Read a register value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := parseRegister(args[0])
		if err != nil {
			return err
		}

		m := msr.New(log)
		if msrAllCores {
			return m.ForEachCore(func(core int) error {
				item, err := m.Read(reg, core)
				if err != nil {
					return err
				}
				fmt.Printf("core %3d: %s\n", core, item)
				return nil
			})
		}

		item, err := m.Read(reg, msrCore)
		if err != nil {
			return err
		}
		fmt.Println(item)
		return nil
	},
}

var msrWriteCmd = &cobra.Command{
	Use:   "write <register> <value>",
	Short: "Write a register value, optionally under a mask",
	Long: `Write a 64-bit value to a register. With --mask only the set mask
bits are changed; the remaining bits keep their current value, read
back immediately before the write.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := parseRegister(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseUint(args[1], 0, 64)
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeInvalidOption,
				fmt.Sprintf("Invalid register value %q", args[1]),
				"Pass a 64-bit numeric literal, e.g. 0x2000CC16")
		}

		mask := msr.NoMask
		if msrMask != "" {
			mask, err = strconv.ParseUint(msrMask, 0, 64)
			if err != nil {
				return errors.NewConfigError(errors.ErrCodeInvalidOption,
					fmt.Sprintf("Invalid mask %q", msrMask),
					"Pass a 64-bit numeric literal, e.g. 0xFFFFFFFFFFFFFFDF")
			}
		}

		m := msr.New(log)
		item := msr.Item{Reg: reg, Value: value, Mask: mask}
		if msrAllCores {
			err = m.ForEachCore(func(core int) error {
				return m.Write(item, core, true)
			})
		} else {
			err = m.Write(item, msrCore, true)
		}
		if err != nil {
			return err
		}
		log.Info("Register written", "register", item.String())
		return nil
	},
}

func parseRegister(s string) (uint32, error) {
	reg, err := strconv.ParseUint(s, 0, 32)
	if err != nil || reg == 0 {
		return 0, errors.NewConfigError(errors.ErrCodeInvalidRegister,
			fmt.Sprintf("Invalid register address %q", s),
			"Pass a non-zero 32-bit numeric literal, e.g. 0xC0011020")
	}
	return uint32(reg), nil
}

func init() {
	msrCmd.PersistentFlags().IntVar(&msrCore, "core", 0, "core ID to target")
	msrCmd.PersistentFlags().BoolVar(&msrAllCores, "all-cores", false, "target every core in ascending order")
	msrWriteCmd.Flags().StringVar(&msrMask, "mask", "", "only modify the set bits of this 64-bit mask")

	msrCmd.AddCommand(msrReadCmd)
	msrCmd.AddCommand(msrWriteCmd)
	rootCmd.AddCommand(msrCmd)
}
