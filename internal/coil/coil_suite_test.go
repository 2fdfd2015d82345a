package coil_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCoil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Coil Suite")
}
