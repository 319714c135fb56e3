package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/nandakiran-r/TestPiper/artifacts"
	"github.com/nandakiran-r/TestPiper/internal/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
)

// executeCommand is used for cobra command testing. It is effectively what's seen here:
// https://github.com/spf13/cobra/blob/master/command_test.go#L34-L43. It should only
// be used in tests. Typically, you should pass rootCmd as the param for root, and your
// subcommand's invocation within args.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()

	return buf.String(), err
}

var _ = Describe("cmd package utility functions", func() {
	Describe("Get the root command", func() {
		Context("when calling the root command function", func() {
			It("should return a root command", func() {
				cmd := rootCmd()
				Expect(cmd).ToNot(BeNil())
				Expect(cmd.Commands()).ToNot(BeEmpty())
			})
		})

		Context("when no subcommand is given", func() {
			It("should fail with usage", func() {
				out, err := executeCommand(rootCmd())
				Expect(err).To(HaveOccurred())
				Expect(out).To(ContainSubstring("Usage"))
			})
		})
	})

	Describe("Initialize Viper configuration", func() {
		Context("when initConfig() is called", func() {
			Context("and no envvars are set", func() {
				It("should have defaults set correctly", func() {
					initConfig(viper.Instance())
					Expect(viper.Instance().GetString("logfile")).To(Equal(DefaultLogFile))
					Expect(viper.Instance().GetString("loglevel")).To(Equal(DefaultLogLevel))
					Expect(viper.Instance().GetString("artifacts")).To(Equal(artifacts.DefaultArtifactsDir))
					Expect(viper.Instance().GetString("image")).To(Equal(DefaultImage))
					Expect(viper.Instance().GetString("listen")).To(Equal(DefaultListenAddr))
				})
			})
			Context("and envvars are set", func() {
				BeforeEach(func() {
					os.Setenv("TESTPIPER_LOGFILE", "/tmp/foo.log")
					os.Setenv("TESTPIPER_LOGLEVEL", "trace")
					DeferCleanup(os.Unsetenv, "TESTPIPER_LOGFILE")
					DeferCleanup(os.Unsetenv, "TESTPIPER_LOGLEVEL")
				})
				It("should have overrides in place", func() {
					initConfig(viper.Instance())
					Expect(viper.Instance().GetString("image")).To(Equal(DefaultImage))
					Expect(viper.Instance().GetString("logfile")).To(Equal("/tmp/foo.log"))
					Expect(viper.Instance().GetString("loglevel")).To(Equal("trace"))
				})
			})
		})
	})

	Describe("Pre-run configuration", func() {
		var cmd *cobra.Command
		BeforeEach(func() {
			cmd = &cobra.Command{
				PersistentPreRun: preRunConfig,
				Run:              func(cmd *cobra.Command, args []string) {},
			}
		})
		Context("configuring a Cobra Command", func() {
			var tmpDir string
			BeforeEach(func() {
				var err error
				tmpDir, err = os.MkdirTemp("", "prerun-config-*")
				Expect(err).ToNot(HaveOccurred())
				DeferCleanup(os.RemoveAll, tmpDir)

				os.Setenv("TESTPIPER_LOGFILE", filepath.Join(tmpDir, "foo.log"))
				DeferCleanup(os.Unsetenv, "TESTPIPER_LOGFILE")
			})
			It("should create the logfile", func() {
				Expect(cmd.ExecuteContext(context.TODO())).To(Succeed())
				_, err := os.Stat(filepath.Join(tmpDir, "foo.log"))
				Expect(err).ToNot(HaveOccurred())
			})
		})
	})
})
