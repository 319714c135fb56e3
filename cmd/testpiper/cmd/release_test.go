package cmd

import (
	"os"
	"path/filepath"

	"github.com/nandakiran-r/TestPiper/internal/release"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Release Command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("When validating release arguments", func() {
		Context("and the user provided no positional args", func() {
			It("should fail to run", func() {
				out, err := executeCommand(rootCmd(), "release")
				Expect(err).To(HaveOccurred())
				Expect(out).To(ContainSubstring("username"))
			})
		})

		Context("and the user provided more than 2 positional args", func() {
			It("should fail to run", func() {
				_, err := executeCommand(rootCmd(), "release", "alice", "2.1", "extra")
				Expect(err).To(HaveOccurred())
			})
		})

		Context("and both dry-run and verify are requested", func() {
			It("should fail to run", func() {
				_, err := executeCommand(rootCmd(), "release", "alice", "--dry-run", "--verify")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Context("When running a dry-run release", func() {
		It("should complete without invoking docker", func() {
			_, err := executeCommand(rootCmd(), "release", "alice", "2.1", "--dry-run")
			Expect(err).ToNot(HaveOccurred())
		})

		It("should not write a receipt or a ledger", func() {
			_, err := executeCommand(rootCmd(), "release", "alice", "--dry-run")
			Expect(err).ToNot(HaveOccurred())

			artifactsDir := os.Getenv("TESTPIPER_ARTIFACTS")
			_, err = os.Stat(filepath.Join(artifactsDir, release.ReceiptFilename))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})
})
