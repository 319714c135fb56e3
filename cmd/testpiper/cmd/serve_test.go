package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Serve Command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("When validating serve arguments", func() {
		Context("and positional args are given", func() {
			It("should fail to run", func() {
				_, err := executeCommand(rootCmd(), "serve", "extra")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Context("When inspecting the command", func() {
		It("should expose the serving flags", func() {
			cmd := serveCmd()
			Expect(cmd.Flags().Lookup("listen")).ToNot(BeNil())
			Expect(cmd.Flags().Lookup("model")).ToNot(BeNil())
			Expect(cmd.Flags().Lookup("piper-bin")).ToNot(BeNil())
		})
	})
})
