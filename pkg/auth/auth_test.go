package auth

import (
	"testing"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
	"gotest.tools/assert"
)

var testTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func getTestRecord() *models.UASData {
	d := models.NewUASData()
	models.FillExampleLocation(d)
	models.FillExampleData(d)
	return d
}

func getTestSigner(t *testing.T) *Signer {
	key, err := GenerateKeyPair()
	assert.NilError(t, err)
	s := NewSigner(key, zaptest.NewLogger(t))
	s.Clock = func() time.Time { return testTime }
	return s
}

func TestMessageLayout(t *testing.T) {
	d := getTestRecord()
	m := Message(d)
	assert.Equal(t, len(m), MessageSize)
	assert.Equal(t, len(m), 135)
	assert.DeepEqual(t, m[:20], []byte(models.ExampleSerialNumber))
	assert.DeepEqual(t, m[20:40], []byte(models.ExampleSessionID))
	// direction 361 little endian
	assert.DeepEqual(t, m[40:44], []byte{0x69, 0x01, 0, 0})
	// latitude 51.4791 truncates to 51
	assert.DeepEqual(t, m[52:56], []byte{51, 0, 0, 0})
	// longitude -0.0013 truncates toward zero
	assert.DeepEqual(t, m[56:60], []byte{0, 0, 0, 0})
}

func TestDigestIgnoresSubUnitNoise(t *testing.T) {
	a := getTestRecord()
	b := getTestRecord()
	b.Location.Latitude += 0.0004
	b.Location.SpeedVertical = 0.01
	b.Location.TimeStamp += 0.3
	b.System.OperatorAltitudeGeo = 20.9
	b.Location.HorizAccuracy = 1
	b.Auth[0].AuthType = models.AuthUASIDSignature
	assert.Equal(t, Digest(a), Digest(b))
}

func TestDigestCoversIdentity(t *testing.T) {
	a := getTestRecord()
	b := getTestRecord()
	b.OperatorID.SetOperatorID("Someone Else")
	assert.Assert(t, Digest(a) != Digest(b))
	c := getTestRecord()
	c.System.Timestamp++
	assert.Assert(t, Digest(a) != Digest(c))
	e := getTestRecord()
	e.Location.AltitudeGeo += 1
	assert.Assert(t, Digest(a) != Digest(e))
}

func TestDigestOfZeroRecord(t *testing.T) {
	var d models.UASData
	m := Message(&d)
	assert.DeepEqual(t, m, make([]byte, MessageSize))
}

func TestSignAndVerify(t *testing.T) {
	s := getTestSigner(t)
	d := getTestRecord()
	res, err := s.Sign(d)
	assert.NilError(t, err)
	assert.Assert(t, res.Verified)
	assert.Equal(t, res.Pages, util.PageCount(len(res.Signature), 17, 23))
	assert.Equal(t, int(d.Auth[0].Length), len(res.Signature))
	assert.Equal(t, int(d.Auth[0].LastPageIndex), res.Pages-1)
	assert.Equal(t, d.Auth[0].Timestamp, util.AuthTimestamp(testTime))
	for i := 0; i < res.Pages; i++ {
		assert.Equal(t, d.Auth[i].AuthType, models.AuthUASIDSignature)
		assert.Equal(t, int(d.Auth[i].DataPage), i)
	}
	assert.Equal(t, d.Auth[res.Pages].AuthType, models.AuthNone)

	sig, err := ExtractSignature(d)
	assert.NilError(t, err)
	assert.DeepEqual(t, sig, res.Signature)
	ok, err := Verify(d, s.Key.Public)
	assert.NilError(t, err)
	assert.Assert(t, ok)
}

func TestVerifyDetectsTampering(t *testing.T) {
	s := getTestSigner(t)
	d := getTestRecord()
	_, err := s.Sign(d)
	assert.NilError(t, err)
	d.BasicID[models.SerialSlot].SetUASID("SPOOFEDSERIAL0000000")
	ok, err := Verify(d, s.Key.Public)
	assert.NilError(t, err)
	assert.Assert(t, !ok)

	other, err := GenerateKeyPair()
	assert.NilError(t, err)
	d = getTestRecord()
	_, err = s.Sign(d)
	assert.NilError(t, err)
	ok, err = Verify(d, other.Public)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestSelfVerificationFailureLeavesRecord(t *testing.T) {
	s := getTestSigner(t)
	s.sign = func(priv *secp256k1.PrivateKey, hash []byte) []byte {
		sig := derSign(priv, hash)
		sig[len(sig)-1] ^= 0xFF
		return sig
	}
	d := getTestRecord()
	before := *d
	res, err := s.Sign(d)
	assert.Equal(t, err, ErrSelfVerification)
	assert.Assert(t, !res.Verified)
	assert.Equal(t, *d, before)
}

func TestSignRejectsPageBudget(t *testing.T) {
	s := getTestSigner(t)
	s.MaxPages = 3
	d := getTestRecord()
	before := *d
	_, err := s.Sign(d)
	budgetErr, ok := errors.Cause(err).(*util.PageBudgetError)
	assert.Assert(t, ok)
	assert.Equal(t, budgetErr.Budget, 3)
	assert.Equal(t, *d, before)
}

func TestWritePagesThreePageScenario(t *testing.T) {
	sig := make([]byte, 63)
	for i := range sig {
		sig[i] = byte(i)
	}
	pages, err := util.SplitPages(sig, 17, 23, 3)
	assert.NilError(t, err)
	d := getTestRecord()
	writePages(d, pages, len(sig), 42)
	assert.Equal(t, d.Auth[0].LastPageIndex, uint8(2))
	assert.Equal(t, d.Auth[0].Length, uint8(63))
	assert.DeepEqual(t, d.Auth[0].AuthData[:17], sig[:17])
	assert.DeepEqual(t, d.Auth[1].AuthData[:], sig[17:40])
	assert.DeepEqual(t, d.Auth[2].AuthData[:], sig[40:63])
	got, err := ExtractSignature(d)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, sig)
}

func TestExtractUnsigned(t *testing.T) {
	_, err := ExtractSignature(getTestRecord())
	assert.Equal(t, err, ErrUnsigned)
}

func TestPublicKeyHex(t *testing.T) {
	key, err := GenerateKeyPair()
	assert.NilError(t, err)
	h := key.PublicKeyHex()
	assert.Equal(t, len(h), 66)
	assert.Assert(t, h[:2] == "02" || h[:2] == "03")
}

func TestSignRejectsOversizedSignature(t *testing.T) {
	s := getTestSigner(t)
	s.sign = func(*secp256k1.PrivateKey, []byte) []byte { return make([]byte, 300) }
	d := getTestRecord()
	before := *d
	_, err := s.Sign(d)
	lengthErr, ok := err.(*SignatureLengthError)
	assert.Assert(t, ok)
	assert.Equal(t, lengthErr.Length, 300)
	assert.Equal(t, *d, before)
}
