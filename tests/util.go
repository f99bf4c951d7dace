package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	tokenPath   = "../contracts/token"
	invoicePath = "../contracts/invoice"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func deployTokenContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath,
		path.Join(tokenPath, "config.yml"))

	e.DeployContract(t, c, nil)
	return c.Hash
}

func deployInvoiceContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, invoicePath,
		path.Join(invoicePath, "config.yml"))

	e.DeployContract(t, c, nil)
	return c.Hash
}
