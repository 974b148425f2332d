package ledger

import (
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// decodeAddresses checks the checksum of every address the intent carries.
func (i *Intent) decodeAddresses() error {
	fields := [][2]string{{"sender", i.sender}, {"receiver", i.receiver}}
	if a := i.asset; a != nil {
		fields = append(fields,
			[2]string{"manager", a.Manager},
			[2]string{"reserve", a.Reserve},
			[2]string{"freeze", a.Freeze},
			[2]string{"clawback", a.Clawback},
		)
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if _, err := types.DecodeAddress(f[1]); err != nil {
			return failure.Wrapf(err, failure.ErrValidation, "ledger: %s %s address", i.kind, f[0])
		}
	}
	return nil
}

// toTransaction turns the intent into an unsigned transaction. The SDK
// decodes every address here, so a bad checksum is reported as a validation
// failure before anything is signed.
func (i *Intent) toTransaction(sp types.SuggestedParams) (types.Transaction, error) {
	var (
		txn types.Transaction
		err error
	)

	switch i.kind {
	case KindPayment:
		txn, err = transaction.MakePaymentTxn(i.sender, i.receiver, i.amount, nil, "", sp)
	case KindAssetTransfer:
		txn, err = transaction.MakeAssetTransferTxn(i.sender, i.receiver, i.amount, nil, sp, "", i.assetID)
	case KindAssetOptIn:
		txn, err = transaction.MakeAssetAcceptanceTxn(i.sender, nil, sp, i.assetID)
	case KindAssetCreate:
		a := i.asset
		txn, err = transaction.MakeAssetCreateTxn(
			i.sender, nil, sp,
			a.Total, a.Decimals, a.DefaultFrozen,
			a.Manager, a.Reserve, a.Freeze, a.Clawback,
			a.UnitName, a.AssetName, a.URL, string(a.MetadataHash),
		)
	case KindAppCreate, KindAppCall:
		txn, err = i.appTransaction(sp)
	default:
		return types.Transaction{}, failure.Validationf("ledger: unknown intent kind %d", i.kind)
	}
	if err != nil {
		return types.Transaction{}, failure.Wrapf(err, failure.ErrValidation, "ledger: encode %s", i.kind)
	}
	return txn, nil
}

func (i *Intent) appTransaction(sp types.SuggestedParams) (types.Transaction, error) {
	if i.app == nil {
		return types.Transaction{}, errors.Newf("%s intent without parameters", i.kind)
	}
	sender, err := types.DecodeAddress(i.sender)
	if err != nil {
		return types.Transaction{}, err
	}
	if i.kind == KindAppCreate {
		return transaction.MakeApplicationCreateTx(
			false, i.app.ApprovalProgram, i.app.ClearProgram,
			types.StateSchema{}, types.StateSchema{},
			i.app.Args, nil, nil, nil,
			sp, sender, nil, types.Digest{}, [32]byte{}, types.Address{},
		)
	}
	return transaction.MakeApplicationNoOpTx(
		i.appID, i.app.Args, nil, nil, nil,
		sp, sender, nil, types.Digest{}, [32]byte{}, types.Address{},
	)
}
