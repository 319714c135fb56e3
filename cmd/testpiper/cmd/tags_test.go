package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags Command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("When validating tags arguments", func() {
		Context("and the user provided no positional args", func() {
			It("should fail to run", func() {
				_, err := executeCommand(rootCmd(), "tags")
				Expect(err).To(HaveOccurred())
			})
		})

		Context("and the user provided more than 1 positional arg", func() {
			It("should fail to run", func() {
				_, err := executeCommand(rootCmd(), "tags", "foo", "bar")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Context("When the repository reference is not parseable", func() {
		It("should fail to run", func() {
			_, err := executeCommand(rootCmd(), "tags", "UPPERCASE/not/valid/REF!")
			Expect(err).To(HaveOccurred())
		})
	})
})
