package etherscan

import (
	"context"
	"fmt"
	"strings"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

const defaultOptimizationRuns = 200

// Contract wraps the contract module.
type Contract struct {
	module
}

func newContract(req Requester) *Contract {
	return &Contract{module{name: moduleContract, req: req}}
}

// ContractABI returns the ABI of a verified contract as a JSON string.
func (c *Contract) ContractABI(ctx context.Context, address string) (string, error) {
	return decode[string](c.get(ctx, "getabi", types.Params{"address": address}))
}

// ContractSourceCode returns the source code of a verified contract.
func (c *Contract) ContractSourceCode(ctx context.Context, address string) ([]types.Record, error) {
	return decode[[]types.Record](c.get(ctx, "getsourcecode", types.Params{"address": address}))
}

// ContractCreation returns the creator and creation transaction of up to five contracts.
func (c *Contract) ContractCreation(ctx context.Context, addresses []string) ([]types.Record, error) {
	return decode[[]types.Record](c.get(ctx, "getcontractcreation", types.Params{
		"contractaddresses": strings.Join(addresses, ","),
	}))
}

// Library is an external library linked into a contract under verification.
type Library struct {
	Name    string
	Address string
}

// VerifyRequest holds the source code submission of VerifyContractSourceCode.
type VerifyRequest struct {
	ContractAddress  string
	SourceCode       string
	ContractName     string
	CompilerVersion  string
	OptimizationUsed bool
	// Runs defaults to 200.
	Runs                  int
	ConstructorArguements string
	Libraries             []Library
}

func (r VerifyRequest) params() types.Params {
	runs := r.Runs
	if runs == 0 {
		runs = defaultOptimizationRuns
	}

	optimization := 0
	if r.OptimizationUsed {
		optimization = 1
	}

	params := types.Params{
		"contractaddress":       r.ContractAddress,
		"sourceCode":            r.SourceCode,
		"contractname":          r.ContractName,
		"compilerversion":       r.CompilerVersion,
		"optimizationUsed":      optimization,
		"runs":                  runs,
		"constructorArguements": optional(r.ConstructorArguements),
	}
	for i, lib := range r.Libraries {
		params[fmt.Sprintf("libraryname%d", i+1)] = lib.Name
		params[fmt.Sprintf("libraryaddress%d", i+1)] = lib.Address
	}

	return params
}

// VerifyContractSourceCode submits source code for verification and returns the receipt GUID.
func (c *Contract) VerifyContractSourceCode(ctx context.Context, req VerifyRequest) (string, error) {
	return decode[string](c.post(ctx, "verifysourcecode", req.params()))
}

// CheckVerificationStatus returns the status of a source code verification.
func (c *Contract) CheckVerificationStatus(ctx context.Context, guid string) (string, error) {
	return decode[string](c.get(ctx, "checkverifystatus", types.Params{"guid": guid}))
}

// VerifyProxyContract submits a proxy contract for verification and returns the receipt GUID.
// expectedImplementation is optional.
func (c *Contract) VerifyProxyContract(ctx context.Context, address, expectedImplementation string) (string, error) {
	return decode[string](c.post(ctx, "verifyproxycontract", types.Params{
		"address":                address,
		"expectedimplementation": optional(expectedImplementation),
	}))
}

// CheckProxyContractVerification returns the status of a proxy contract verification.
func (c *Contract) CheckProxyContractVerification(ctx context.Context, guid string) (string, error) {
	return decode[string](c.get(ctx, "checkproxyverification", types.Params{"guid": guid}))
}
