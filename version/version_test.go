package version

import (
	"reflect"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("version package utility", func() {
	Context("When printing the VersionContext", func() {
		It("should display the version and the commit information as a string", func() {
			Expect(strings.Contains(Version.String(), Version.Version)).To(BeTrue())
			Expect(strings.Contains(Version.String(), Version.Commit)).To(BeTrue())
		})
	})

	// We include the VersionContext in release receipts, so the JSON
	// struct tags need to stay stable.
	Context("When using a VersionContext", func() {
		It("should have JSON struct tags on fields", func() {
			nf, nexists := reflect.TypeOf(&Version).Elem().FieldByName("Name")
			Expect(nexists).To(BeTrue())
			Expect(string(nf.Tag)).To(Equal(`json:"name"`))

			vf, vexists := reflect.TypeOf(&Version).Elem().FieldByName("Version")
			Expect(vexists).To(BeTrue())
			Expect(string(vf.Tag)).To(Equal(`json:"version"`))

			cf, cexists := reflect.TypeOf(&Version).Elem().FieldByName("Commit")
			Expect(cexists).To(BeTrue())
			Expect(string(cf.Tag)).To(Equal(`json:"commit"`))
		})

		It("should only have three struct keys for tests to be valid", func() {
			keys := reflect.TypeOf(Version).NumField()
			Expect(keys).To(Equal(3))
		})
	})

	Context("When parsing the version as semver", func() {
		It("should reject the dev build placeholder", func() {
			vc := VersionContext{Version: "unknown"}
			_, err := vc.Semver()
			Expect(err).To(HaveOccurred())
		})

		It("should tolerate a leading v", func() {
			vc := VersionContext{Version: "v2.1.0"}
			v, err := vc.Semver()
			Expect(err).ToNot(HaveOccurred())
			Expect(v.String()).To(Equal("2.1.0"))
		})
	})
})
