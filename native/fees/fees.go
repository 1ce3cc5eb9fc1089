package fees

import (
	"errors"
	"math/big"
	"strings"

	"fanforge/native/registry"
)

var (
	// ErrInvalidAmount indicates the gross amount was zero or negative.
	ErrInvalidAmount = errors.New("fees: amount must be positive")
	// ErrUnknownTransactionType indicates no rate is configured for the type.
	ErrUnknownTransactionType = errors.New("fees: no rate configured for transaction type")
)

// BpsDenominator is the scaling factor for basis point math.
const BpsDenominator = 10_000

// Canonical transaction types carried by the default commission table.
const (
	TxTip               = "tip"
	TxSubscription      = "subscription"
	TxPPV               = "ppv"
	TxPitchContribution = "pitch_contribution"
)

// Denomination selects the rounding rule applied to a fee amount.
type Denomination uint8

const (
	// DenomFanCoin amounts are whole FanCoins; fees truncate toward zero.
	DenomFanCoin Denomination = iota
	// DenomFiatCents amounts are fiat cents; fees round half away from zero
	// at the smallest unit.
	DenomFiatCents
)

// Breakdown summarises a commission computation. Fee + Net always
// reconstitutes Gross exactly: the fee is rounded and the net is derived by
// subtraction, so no value leaks to rounding.
type Breakdown struct {
	TxType  string   `json:"txType"`
	RateBps uint32   `json:"rateBps"`
	Gross   *big.Int `json:"gross"`
	Fee     *big.Int `json:"fee"`
	Net     *big.Int `json:"net"`
}

// Split extends a Breakdown with the ecosystem-fund skim, preserving
// Fee + EcosystemFee + Net == Gross.
type Split struct {
	Breakdown
	EcosystemFee *big.Int `json:"ecosystemFee"`
}

// NormalizeType canonicalises transaction type identifiers for table lookups.
func NormalizeType(txType string) string {
	return strings.ToLower(strings.TrimSpace(txType))
}

// Calculator resolves platform commissions against one registry version.
type Calculator struct {
	params registry.FeeParams
}

// NewCalculator constructs a calculator bound to the supplied fee parameters.
func NewCalculator(params registry.FeeParams) *Calculator {
	return &Calculator{params: params}
}

// Compute derives the platform fee and creator net for the supplied
// transaction type and gross amount.
func (c *Calculator) Compute(txType string, gross *big.Int, denom Denomination) (*Breakdown, error) {
	if gross == nil || gross.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	normalized := NormalizeType(txType)
	rateBps, ok := c.params.RatesBps[normalized]
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	fee := feeAmount(gross, rateBps, denom)
	return &Breakdown{
		TxType:  normalized,
		RateBps: rateBps,
		Gross:   new(big.Int).Set(gross),
		Fee:     fee,
		Net:     new(big.Int).Sub(gross, fee),
	}, nil
}

// SplitWithEcosystem computes the commission plus the ecosystem-fund skim. The
// skim is capped so the combined deductions never exceed the gross amount.
func (c *Calculator) SplitWithEcosystem(txType string, gross *big.Int, denom Denomination) (*Split, error) {
	breakdown, err := c.Compute(txType, gross, denom)
	if err != nil {
		return nil, err
	}
	ecosystem := feeAmount(gross, c.params.EcosystemFundBps, denom)
	remaining := new(big.Int).Sub(breakdown.Gross, breakdown.Fee)
	if ecosystem.Cmp(remaining) > 0 {
		ecosystem = remaining
	}
	split := &Split{Breakdown: *breakdown, EcosystemFee: ecosystem}
	split.Net = new(big.Int).Sub(remaining, ecosystem)
	return split, nil
}

// feeAmount applies the basis point rate with the denomination's rounding
// rule. Gross is always positive here, so half away from zero reduces to
// adding half the denominator before the floor division.
func feeAmount(gross *big.Int, rateBps uint32, denom Denomination) *big.Int {
	fee := new(big.Int).Mul(gross, big.NewInt(int64(rateBps)))
	if denom == DenomFiatCents {
		fee = fee.Add(fee, big.NewInt(BpsDenominator/2))
	}
	fee = fee.Div(fee, big.NewInt(BpsDenominator))
	if fee.Cmp(gross) > 0 {
		return new(big.Int).Set(gross)
	}
	return fee
}
