package signedroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/ldclabs/cose/go/cwt"
	"github.com/veraison/go-cose"
)

var (
	ErrCurveNotSupported = errors.New("curve not supported")
	ErrRootRequired      = errors.New("the state to sign has no root")
)

// curveAlgs pairs each supported curve with the ECDSA algorithm of matching
// digest size, as rfc 8152 sec 8.1 recommends.
var curveAlgs = map[string]cose.Algorithm{
	elliptic.P256().Params().Name: cose.AlgorithmES256,
	elliptic.P384().Params().Name: cose.AlgorithmES384,
	elliptic.P521().Params().Name: cose.AlgorithmES512,
}

// RootSigner signs accumulator states as COSE Sign1 messages. The CWT claims
// naming the signer, and carrying its public key, go in the protected header.
type RootSigner struct {
	codec   dtcbor.CBORCodec
	headers cose.Headers
	signer  cose.Signer
}

type RootSignerConfig struct {
	Issuer        string
	Subject       string
	KeyIdentifier string
}

func NewRootSignerForECPrivateKey(cfg RootSignerConfig, key ecdsa.PrivateKey) (RootSigner, error) {
	alg, err := CoseAlgForEC(key.PublicKey)
	if err != nil {
		return RootSigner{}, err
	}
	signer, err := cose.NewSigner(alg, &key)
	if err != nil {
		return RootSigner{}, fmt.Errorf("cose signer for %v: %w", alg, err)
	}
	codec, err := NewRootSignerCodec()
	if err != nil {
		return RootSigner{}, err
	}

	return RootSigner{
		codec: codec,
		headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				dtcose.HeaderLabelCWTClaims: NewCNFClaim(cfg, alg, key.PublicKey),
			},
		},
		signer: signer,
	}, nil
}

func (rs RootSigner) Codec() dtcbor.CBORCodec { return rs.codec }

// SignAccumulator signs the current head of acc. The returned state still
// carries the root, the message does not.
func (rs RootSigner) SignAccumulator(acc *mmr.Accumulator, timestamp int64, external []byte) ([]byte, MMRState, error) {
	state := StateFor(acc, timestamp)
	msg, err := rs.Sign1(state, external)
	if err != nil {
		return nil, MMRState{}, err
	}
	return msg, state, nil
}

// Sign1 signs state, root included, and encodes the message with the root
// removed from the payload. Verifiers recover the root from the mmr at
// state.LeafCount.
func (rs RootSigner) Sign1(state MMRState, external []byte) ([]byte, error) {
	if state.MMRSize != mmr.MMRSize(state.LeafCount) {
		return nil, fmt.Errorf("%w: size %d, leaf count %d", ErrStateSizeMismatch, state.MMRSize, state.LeafCount)
	}
	if len(state.Root) == 0 {
		return nil, ErrRootRequired
	}

	signedPayload, err := rs.codec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}
	detached := state
	detached.Root = nil
	detachedPayload, err := rs.codec.MarshalCBOR(detached)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{Headers: rs.headers, Payload: signedPayload}
	if err = msg.Sign(rand.Reader, external, rs.signer); err != nil {
		return nil, fmt.Errorf("sign root for %d leaves: %w", state.LeafCount, err)
	}
	msg.Payload = detachedPayload
	return msg.MarshalCBOR()
}

// CoseAlgForEC returns the algorithm to sign with for the curve of pub
func CoseAlgForEC(pub ecdsa.PublicKey) (cose.Algorithm, error) {
	name := pub.Curve.Params().Name
	alg, ok := curveAlgs[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrCurveNotSupported)
	}
	return alg, nil
}

// NewCNFClaim returns the CWT claims set for the signer described by cfg. The
// public key is carried as the confirmation (cnf) claim.
func NewCNFClaim(cfg RootSignerConfig, alg cose.Algorithm, pub ecdsa.PublicKey) map[int64]interface{} {
	return map[int64]interface{}{
		int64(cwt.KeyIss): cfg.Issuer,
		int64(cwt.KeySub): cfg.Subject,
		dtcose.CNFLabel: map[int64]interface{}{
			dtcose.CoseKeyLabel: coseKey(cfg.KeyIdentifier, alg, pub),
		},
	}
}

func coseKey(kid string, alg cose.Algorithm, pub ecdsa.PublicKey) map[int64]interface{} {
	return map[int64]interface{}{
		dtcose.KeyIDLabel: kid,
		// go-datatrails-common reads the jwk key type, rfc 8152 would say EC2
		dtcose.KeyTypeLabel:   "EC",
		dtcose.AlgorithmLabel: alg,
		dtcose.ECCurveLabel:   pub.Curve.Params().Name,
		dtcose.ECXLabel:       pub.X.Bytes(),
		dtcose.ECYLabel:       pub.Y.Bytes(),
	}
}

// NewRootSignerCodec returns the deterministic codec states are signed with.
// Unsigned integers decode as uint64.
func NewRootSignerCodec() (dtcbor.CBORCodec, error) {
	return dtcbor.NewCBORCodec(dtcbor.NewDeterministicEncOpts(), dtcbor.NewDeterministicDecOpts())
}

func newDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}
