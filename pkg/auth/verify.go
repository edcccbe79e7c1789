package auth

import (
	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// ErrUnsigned is returned when a record carries no signature pages
var ErrUnsigned = errors.New("record has no authentication pages")

// ExtractSignature rebuilds the signature bytes from the auth pages of d
func ExtractSignature(d *models.UASData) ([]byte, error) {
	count := d.AuthPageCount()
	if count == 0 {
		return nil, ErrUnsigned
	}
	if count > models.AuthMaxPages {
		return nil, &util.PageBudgetError{Length: int(d.Auth[0].Length), Required: count, Budget: models.AuthMaxPages}
	}
	remaining := int(d.Auth[0].Length)
	pages := make([]util.Page, 0, count)
	for i := 0; i < count; i++ {
		page := &d.Auth[i]
		if page.AuthType != d.Auth[0].AuthType || int(page.DataPage) != i {
			return nil, errors.Wrapf(util.ErrMissingPage, "page %d", i)
		}
		capacity := util.AuthPageCapacity
		if i == 0 {
			capacity = util.AuthFirstPageCapacity
		}
		n := capacity
		if remaining < n {
			n = remaining
		}
		pages = append(pages, util.Page{Index: i, Data: page.AuthData[:n]})
		remaining -= n
	}
	if remaining != 0 {
		return nil, errors.Errorf("auth length %d exceeds %d pages", d.Auth[0].Length, count)
	}
	return util.JoinPages(pages)
}

// Verify checks the signature carried in d against the current digest of d
func Verify(d *models.UASData, pub *secp256k1.PublicKey) (bool, error) {
	sig, err := ExtractSignature(d)
	if err != nil {
		return false, err
	}
	digest := Digest(d)
	return verify(sig, digest[:], pub), nil
}
