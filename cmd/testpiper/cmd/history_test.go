package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/nandakiran-r/TestPiper/internal/history"
	"github.com/nandakiran-r/TestPiper/internal/release"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("History Command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("When no ledger exists yet", func() {
		It("should report that nothing was recorded", func() {
			out, err := executeCommand(rootCmd(), "history")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("no releases recorded"))
		})
	})

	Context("When the ledger holds a release", func() {
		BeforeEach(func() {
			artifactsDir := os.Getenv("TESTPIPER_ARTIFACTS")
			Expect(os.MkdirAll(artifactsDir, 0o755)).To(Succeed())

			ledger, err := history.Open(filepath.Join(artifactsDir, history.DefaultFilename))
			Expect(err).ToNot(HaveOccurred())
			DeferCleanup(ledger.Close)

			Expect(ledger.Record(context.TODO(), release.Receipt{
				ID:         "test-release",
				Image:      "piper-tts",
				ImageID:    "sha256:0123456789abcdef0123456789abcdef",
				Refs:       []string{"alice/piper-tts:latest", "alice/piper-tts:2.1"},
				FinishedAt: time.Now(),
			})).To(Succeed())
		})

		It("should print the recorded refs with a short image ID", func() {
			out, err := executeCommand(rootCmd(), "history")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("alice/piper-tts:latest alice/piper-tts:2.1"))
			Expect(out).To(ContainSubstring("0123456789ab"))
			Expect(out).ToNot(ContainSubstring("sha256:"))
		})
	})

	Context("When extra arguments are given", func() {
		It("should fail to run", func() {
			_, err := executeCommand(rootCmd(), "history", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = DescribeTable("Shorten image IDs for display",
	func(id, expected string) {
		Expect(shortImageID(id)).To(Equal(expected))
	},
	Entry("with a sha256 prefix", "sha256:0123456789abcdef", "0123456789ab"),
	Entry("without a prefix", "0123456789abcdef", "0123456789ab"),
	Entry("with a short ID", "abc", "abc"),
)
