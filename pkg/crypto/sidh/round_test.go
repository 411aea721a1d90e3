package sidh

import (
	"math/big"
	"sync"
	"testing"
)

func TestRoundDispatcherExhausts(t *testing.T) {
	d := newRoundDispatcher(5)
	seen := make(map[int]bool)
	for i := 0; i < 5; i++ {
		r, ok := d.take()
		if !ok {
			t.Fatalf("take() exhausted early at i=%d", i)
		}
		if seen[r] {
			t.Fatalf("round %d handed out twice", r)
		}
		seen[r] = true
	}
	if _, ok := d.take(); ok {
		t.Fatal("take() returned ok after exhaustion")
	}
}

func TestRoundDispatcherConcurrentTakeIsExclusive(t *testing.T) {
	const n = 500
	d := newRoundDispatcher(n)
	var mu sync.Mutex
	seen := make(map[int]bool, n)
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				r, ok := d.take()
				if !ok {
					return
				}
				mu.Lock()
				if seen[r] {
					t.Errorf("round %d handed out twice", r)
				}
				seen[r] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("got %d distinct rounds, want %d", len(seen), n)
	}
}

func TestRunWorkersVisitsEveryRound(t *testing.T) {
	const n = 100
	d := newRoundDispatcher(n)
	var mu sync.Mutex
	visited := make([]bool, n)
	err := runWorkers(d, 8, func(r int) error {
		mu.Lock()
		visited[r] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("runWorkers: %v", err)
	}
	for r, v := range visited {
		if !v {
			t.Fatalf("round %d never visited", r)
		}
	}
}

func TestRunWorkersSurfacesFirstError(t *testing.T) {
	d := newRoundDispatcher(20)
	sentinel := ErrInvalidParameter
	err := runWorkers(d, 4, func(r int) error {
		if r == 7 {
			return sentinel
		}
		return nil
	})
	if err == nil {
		t.Fatal("runWorkers returned nil despite a failing round")
	}
}

func TestRunWorkersDrainsRemainingAfterError(t *testing.T) {
	const n = 50
	d := newRoundDispatcher(n)
	var mu sync.Mutex
	count := 0
	err := runWorkers(d, 4, func(r int) error {
		mu.Lock()
		count++
		mu.Unlock()
		if r%10 == 0 {
			return ErrInvalidParameter
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if count != n {
		t.Fatalf("workers processed %d rounds, want all %d despite errors", count, n)
	}
}

func TestCommitRoundProducesConsistentCommitment(t *testing.T) {
	priv, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	randomizer, com1, rawX, z, err := commitRound(priv.SK)
	if err != nil {
		t.Fatalf("commitRound: %v", err)
	}
	if !KeyGenerationA(randomizer).Equal(com1) {
		t.Fatal("commitRound's com1 does not match KeyGenerationA(randomizer)")
	}
	if z.IsZero() {
		t.Fatal("zBlind produced a zero denominator")
	}
	if rawX.IsZero() {
		t.Fatal("commitRound produced a zero combined numerator")
	}
}

func TestRespondAndVerifyRoundBit0(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	randomizer, com1, rawX, z, err := commitRound(priv.SK)
	if err != nil {
		t.Fatalf("commitRound: %v", err)
	}
	combined := rawX.Mul(z.Inv())
	resp, psiBit, err := respondRound(0, randomizer, combined)
	if err != nil {
		t.Fatalf("respondRound: %v", err)
	}
	if psiBit != 0 {
		t.Fatal("bit-0 response should carry psiBit == 0")
	}
	if resp[0]&1 != 0 {
		t.Fatal("a bit-0 response (the revealed randomizer) must be even")
	}

	curveX, curveZ := verifyCurveProj(resp)
	gotCom1 := curveX.Mul(curveZ.Inv())
	if !gotCom1.Equal(com1) {
		t.Fatal("verifyCurveProj recomputed a different curve coefficient than the signer committed to")
	}

	combineX, combineZ := verifyCombineProj(resp, pub.A)
	gotCombined := combineX.Mul(combineZ.Inv())
	if SharedSecret(gotCombined) != SharedSecret(combined) {
		t.Fatal("verifyCombineProj recomputed a value disagreeing on SharedSecret with the signer's")
	}
}

func TestRespondAndVerifyRoundBit1(t *testing.T) {
	priv, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, com1, rawX, z, err := commitRound(priv.SK)
	if err != nil {
		t.Fatalf("commitRound: %v", err)
	}
	combined := rawX.Mul(z.Inv())
	resp, psiBit, err := respondRound(1, Scalar6{}, combined)
	if err != nil {
		t.Fatalf("respondRound: %v", err)
	}
	if err := verifyBit1Order(resp, psiBit, com1); err != nil {
		t.Fatalf("verifyBit1Order rejected a genuine response: %v", err)
	}
	x, z2 := verifyBit1Proj(resp, psiBit, com1)
	got := x.Mul(z2.Inv())
	if SharedSecret(got) != SharedSecret(combined) {
		t.Fatal("verifyBit1Proj did not reconstruct a value agreeing on SharedSecret")
	}
}

func TestVerifyCurveProjRejectsMismatchedRandomizer(t *testing.T) {
	priv, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, com1, _, _, err := commitRound(priv.SK)
	if err != nil {
		t.Fatalf("commitRound: %v", err)
	}
	var wrongRandomizer Scalar6
	wrongRandomizer[0] = 12346
	curveX, curveZ := verifyCurveProj(wrongRandomizer)
	if curveX.Mul(curveZ.Inv()).Equal(com1) {
		t.Fatal("verifyCurveProj agreed with Com1 for an unrelated randomizer")
	}
}

func TestSampleEvenRandomizerInRange(t *testing.T) {
	lowerBound := big.NewInt(2)
	upperBound := new(big.Int).Sub(OA, big.NewInt(2))
	for i := 0; i < 50; i++ {
		s, err := sampleEvenRandomizer()
		if err != nil {
			t.Fatalf("sampleEvenRandomizer: %v", err)
		}
		v := s.BigInt()
		if v.Bit(0) != 0 {
			t.Fatalf("sampled randomizer %s is odd", v)
		}
		if v.Cmp(lowerBound) < 0 || v.Cmp(upperBound) > 0 {
			t.Fatalf("sampled randomizer %s outside [2, oA-2]", v)
		}
	}
}
