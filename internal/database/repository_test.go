package database

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/liquidvex/market-core/internal/config"
)

var _ = Describe("normalizeDSN", func() {
	It("leaves an empty DSN alone", func() {
		Expect(normalizeDSN("")).To(Equal(""))
	})

	It("appends the simple-protocol flag to a bare DSN", func() {
		Expect(normalizeDSN("postgres://localhost/audit")).
			To(Equal("postgres://localhost/audit?prefer_simple_protocol=true"))
	})

	It("joins with an ampersand when a query string exists", func() {
		Expect(normalizeDSN("postgres://localhost/audit?sslmode=disable")).
			To(Equal("postgres://localhost/audit?sslmode=disable&prefer_simple_protocol=true"))
	})

	It("does not duplicate an existing flag", func() {
		dsn := "postgres://localhost/audit?prefer_simple_protocol=true"
		Expect(normalizeDSN(dsn)).To(Equal(dsn))
	})
})

var _ = Describe("poolSettings", func() {
	It("honors the configured pool limits", func() {
		maxOpen, maxIdle, maxLifetime := poolSettings(config.DatabaseConfig{
			MaxOpenConns:    50,
			MaxIdleConns:    10,
			ConnMaxLifetime: 15,
		})
		Expect(maxOpen).To(Equal(50))
		Expect(maxIdle).To(Equal(10))
		Expect(maxLifetime).To(Equal(15 * time.Minute))
	})

	It("falls back to sane limits when unset", func() {
		maxOpen, maxIdle, maxLifetime := poolSettings(config.DatabaseConfig{})
		Expect(maxOpen).To(Equal(25))
		Expect(maxIdle).To(Equal(5))
		Expect(maxLifetime).To(Equal(5 * time.Minute))
	})
})
