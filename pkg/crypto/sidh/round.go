// round.go implements the per-round worker logic a sign or verify call
// dispatches across its N_ROUNDS rounds, grounded on
// original_source/SIDH_signature.c's sign_thread/verify_thread worker loops
// and this codebase's own per-item worker pattern from pq_tx_signer.go's
// VerifyBatch (a goroutine per item, joined on a WaitGroup).
package sidh

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
)

// roundDispatcher hands out round indices [0, n) to a worker pool, one at a
// time, until exhausted. It stands in for original_source's CUR_ROUND
// global counter guarded by a pthread mutex (RLOCK); here the counter is a
// single atomic value with no global state, created afresh for each phase of
// one Sign or Verify call.
type roundDispatcher struct {
	next int64
	n    int64
}

func newRoundDispatcher(n int) *roundDispatcher {
	return &roundDispatcher{n: int64(n)}
}

// take returns the next round index and true, or (_, false) once every
// round has been claimed.
func (d *roundDispatcher) take() (int, bool) {
	idx := atomic.AddInt64(&d.next, 1) - 1
	if idx >= d.n {
		return 0, false
	}
	return int(idx), true
}

// runWorkers starts workerCount goroutines that each pull round indices
// from d and call fn until the dispatcher is exhausted, then joins them.
// The first non-nil error any worker returns is surfaced after join
// (recorded with sync.Once so concurrent failures don't race); every
// worker still runs its remaining claimed rounds to completion rather than
// aborting early, matching this codebase's join-then-report pattern. This
// pool is for the non-blocking per-round work (commit, response); the
// InvBatch phase in driver.go (batchNormalize) instead spawns one goroutine
// per batch participant, since every participant must reach the batch
// barrier concurrently (see
// invbatch.go and original_source's fixed NUM_THREADS=248 model).
func runWorkers(d *roundDispatcher, workerCount int, fn func(round int) error) error {
	if workerCount < 1 {
		workerCount = 1
	}
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for {
				r, ok := d.take()
				if !ok {
					return
				}
				if err := fn(r); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// zBlind derives the round's projective denominator from its (always
// public) curve commitment. Keeping the combined value in projective form
// until every round has committed is what lets the driver defer all
// N_ROUNDS field inversions into one InvBatch pass instead of paying for
// each separately.
func zBlind(com1 Fp2Elem) Fp2Elem {
	return projDenominator("sidh-blind", com1.Bytes())
}

// fp2InvWithNormInv completes a's inverse given the already-computed
// inverse of a's norm (a FieldElem), via conj(a)/norm(a). Used after a
// batch of norms has gone through InvBatch together.
func fp2InvWithNormInv(a Fp2Elem, normInv FieldElem) Fp2Elem {
	c := a.Conj()
	return Fp2Elem{A0: c.A0.Mul(normInv), A1: c.A1.Mul(normInv)}
}

// sampleEvenRandomizer draws a fresh randomizer uniformly from the even
// integers in [2, oA-2] (oA = 2^372). It samples k uniformly in
// [0, (oA-4)/2] and returns 2k+2, which covers that range exactly; oA is a
// power of two, so the division by 2 is exact and rand[r] is even.
func sampleEvenRandomizer() (Scalar6, error) {
	span := new(big.Int).Sub(OA, big.NewInt(4))
	span.Rsh(span, 1)
	k, err := rand.Int(rand.Reader, new(big.Int).Add(span, big.NewInt(1)))
	if err != nil {
		return Scalar6{}, err
	}
	val := new(big.Int).Lsh(k, 1)
	val.Add(val, big.NewInt(2))
	return ScalarFromBigInt(val), nil
}

// commitRound is the prover's phase-1 work for one round: sample a fresh
// even randomizer, commit to the curve it reaches, and compute the (still
// projective) combined value without performing any inversion. A randomizer
// whose combined value Compress would reject (both decoded coordinates
// divisible by 3) is discarded and a fresh one drawn, so the round can be
// answered whichever challenge bit it later receives.
func commitRound(sk Scalar6) (randomizer Scalar6, com1 Fp2Elem, rawX Fp2Elem, z Fp2Elem, err error) {
	three := big.NewInt(3)
	for {
		randomizer, err = sampleEvenRandomizer()
		if err != nil {
			return Scalar6{}, Fp2Elem{}, Fp2Elem{}, Fp2Elem{}, fmt.Errorf("sidh: commitRound: %w", err)
		}
		com1 = KeyGenerationA(randomizer)
		combined := SecretAgreementB(sk, com1)
		a, b := decodePoint(combined)
		if new(big.Int).Mod(a, three).Sign() != 0 || new(big.Int).Mod(b, three).Sign() != 0 {
			z = zBlind(com1)
			rawX = combined.Mul(z)
			return randomizer, com1, rawX, z, nil
		}
	}
}

// respondRound fills in round r's revealed response given the already-known
// challenge bit, completing the commitment produced by commitRound. A
// bit-1 round's response is a compressed scalar, so Compress's InvalidOrder
// failure (component C's own contract) is fatal to the whole Sign call
// rather than silently skipped.
func respondRound(bit byte, randomizer Scalar6, combinedAffine Fp2Elem) (resp Scalar6, psiBit byte, err error) {
	if bit == 0 {
		return randomizer, 0, nil
	}
	t, pb, cerr := Compress(combinedAffine)
	if cerr != nil {
		return Scalar6{}, 0, fmt.Errorf("sidh: respondRound: %w", cerr)
	}
	return t, pb, nil
}

// verifyCurveProj recomputes a bit-0 round's curve coefficient from the
// revealed randomizer in projective form, for verifyBatchA to normalize
// alongside every other bit-0 round in the signature.
func verifyCurveProj(resp Scalar6) (x, z Fp2Elem) {
	z = projDenominator("sidh-curve", resp.Bytes())
	return curveFromSecret(resp).Mul(z), z
}

// verifyCombineProj recomputes a bit-0 round's combined value from the
// revealed randomizer and the signer's public curve, in projective form,
// for verifyBatchB to normalize. This is independent of verifyCurveProj's
// own batch (the Com1 check and the Com2 check are separate comparisons,
// exactly as original_source's KeyGeneration_A and SecretAgreement_A run
// against their own internal batches during verification).
func verifyCombineProj(resp Scalar6, pubB Fp2Elem) (x, z Fp2Elem) {
	com1 := curveFromSecret(resp)
	z = zBlind(com1)
	return pubB.Add(com1).Mul(z), z
}

// verifyBit1Order runs the spec-mandated 238-step xTPL order check against
// the affine point a bit-1 round's response decompresses to, before that
// point is trusted for the Com2 comparison.
func verifyBit1Order(resp Scalar6, psiBit byte, com1 Fp2Elem) error {
	return checkFullOrder(decompressAffine(resp, psiBit, com1))
}

// verifyBit1Proj decompresses a bit-1 round's response in projective form,
// for verifyBatchC to normalize.
func verifyBit1Proj(resp Scalar6, psiBit byte, com1 Fp2Elem) (x, z Fp2Elem) {
	p := Decompress(resp, psiBit, com1)
	return p.X, p.Z
}
