package fold

// KFold splits n rows into K contiguous test blocks. For fold i the test set
// is block i and the train set is every other row. It is the reference
// Splitter used in tests and by callers that do not bring their own fold
// generator.
type KFold struct {
	K int
}

// Split implements Splitter. Block sizes differ by at most one row.
func (k KFold) Split(n int) []Fold {
	if k.K <= 0 || n <= 0 {
		return nil
	}
	folds := make([]Fold, 0, k.K)
	for i := 0; i < k.K; i++ {
		lo, hi := i*n/k.K, (i+1)*n/k.K
		f := Fold{
			Train: make([]int, 0, n-(hi-lo)),
			Test:  make([]int, 0, hi-lo),
		}
		for r := 0; r < n; r++ {
			if r >= lo && r < hi {
				f.Test = append(f.Test, r)
			} else {
				f.Train = append(f.Train, r)
			}
		}
		folds = append(folds, f)
	}
	return folds
}
