package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("address", AddressMeddler{})
	meddler.Register("hash", HashMeddler{})
}

// AddressMeddler stores common.Address as lowercase hex. NULL maps to a nil *common.Address.
type AddressMeddler struct{}

func (AddressMeddler) PreRead(any) (any, error) {
	return new(sql.NullString), nil
}

func (AddressMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case **common.Address:
		*ptr = nil
		if ns.Valid {
			address := common.HexToAddress(ns.String)
			*ptr = &address
		}
	case *common.Address:
		*ptr = common.Address{}
		if ns.Valid {
			*ptr = common.HexToAddress(ns.String)
		}
	default:
		return fmt.Errorf("expected *common.Address or **common.Address, got %T", fieldAddr)
	}

	return nil
}

func (AddressMeddler) PreWrite(field any) (any, error) {
	switch v := field.(type) {
	case *common.Address:
		if v == nil {
			return nil, nil
		}
		return strings.ToLower(v.Hex()), nil
	case common.Address:
		return strings.ToLower(v.Hex()), nil
	default:
		return nil, fmt.Errorf("expected common.Address or *common.Address, got %T", field)
	}
}

// HashMeddler stores common.Hash as hex. NULL maps to a nil *common.Hash.
type HashMeddler struct{}

func (HashMeddler) PreRead(any) (any, error) {
	return new(sql.NullString), nil
}

func (HashMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case **common.Hash:
		*ptr = nil
		if ns.Valid {
			hash := common.HexToHash(ns.String)
			*ptr = &hash
		}
	case *common.Hash:
		*ptr = common.Hash{}
		if ns.Valid {
			*ptr = common.HexToHash(ns.String)
		}
	default:
		return fmt.Errorf("expected *common.Hash or **common.Hash, got %T", fieldAddr)
	}

	return nil
}

func (HashMeddler) PreWrite(field any) (any, error) {
	switch v := field.(type) {
	case *common.Hash:
		if v == nil {
			return nil, nil
		}
		return v.Hex(), nil
	case common.Hash:
		return v.Hex(), nil
	default:
		return nil, fmt.Errorf("expected common.Hash or *common.Hash, got %T", field)
	}
}
