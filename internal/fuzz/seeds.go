package fuzztests

import (
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB
const maxFuzzInput = 1 << 16 // 64 KiB

// languageSeeds covers every construct the parser knows about.
var languageSeeds = []string{
	"",
	"int main(void) { return 0; }\n",
	"struct Box<T> { T value; };\nint main(void) { Box<int> b; b.value = 1; return b.value; }\n",
	"struct Pair<K, V> { K key; V value; };\nstruct Pair<int, char*> p;\n",
	"T max<T>(T a, T b) { return a > b ? a : b; }\nint f(void) { return max<int>(1, 2); }\n",
	"struct Node<T> { T value; struct Node<T>* next; };\nstruct Node<Node<int>*> n;\n",
	"struct List<T> { T* items; unsigned long len; };\nvoid push<T>(List<T>* l, T v) { l->items[l->len++] = v; }\n",
	"#include <stdio.h>\n#define N 4\ntypedef unsigned int uint;\nenum Color { RED, GREEN = 2, BLUE, };\n",
	"static inline int twice(int x) { return x * 2; }\nextern int counter;\n",
	"int loop(int n) { int s = 0; for (int i = 0; i < n; i++) { if (i % 2 == 0) continue; else s += i; } while (n--) s++; do { s--; } while (s > 0); return s; }\n",
	"int f(void) { int a[3] = {1, 2, 3}; return (int)sizeof(a) / sizeof(a[0]); }\n",
	"struct Grow<T> { Grow<Grow<T>>* next; };\nGrow<int> g;\n",
	"struct Box<T> { T v; };\nstruct Box<int, char> b;\n",
	"int main(void) { return 1 }\n",
	"struct Bad<T, T> { T x; };\n",
	"T id<T>(T x) { return x; }\nint g(void) { return id<int>(id<int>(id<int>(1))); }\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
