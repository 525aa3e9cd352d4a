package utils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/utils"
)

var _ = Describe("Truncate", func() {
	It("returns short strings unchanged", func() {
		Expect(utils.Truncate("hello", 10)).To(Equal("hello"))
	})

	It("truncates long strings and appends an ellipsis", func() {
		Expect(utils.Truncate("hello world", 5)).To(Equal("hello..."))
	})

	It("returns strings at exactly maxLen unchanged", func() {
		Expect(utils.Truncate("hello", 5)).To(Equal("hello"))
	})
})
