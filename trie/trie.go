package trie

import "strings"

// Node represents a node in the Trie
type Node struct {
    IsLast bool
    Next   [26]*Node
}

// Trie stores lower-case a-z words. Anything outside that range is
// rejected on Add and never matches on lookup.
type Trie struct {
    root   *Node
    size   int
    OFFSET int
}

// NewTrie creates and returns a new Trie
func NewTrie() *Trie {
    return &Trie{
        root:   &Node{},
        OFFSET: 'a',
    }
}

// Add inserts s and reports whether it was accepted.
func (t *Trie) Add(s string) bool {
    lowerS := strings.ToLower(s)
    if lowerS == "" || !t.valid(lowerS) {
        return false
    }
    if t.ContainsWord(lowerS) {
        return true
    }
    t.root = t.add2(t.root, lowerS, 0)
    t.size++
    return true
}

// ContainsWord checks if the Trie contains the entire word
func (t *Trie) ContainsWord(s string) bool {
    x := t.get(t.root, strings.ToLower(s), 0)
    if x == nil {
        return false
    }
    return x.IsLast
}

// ContainsPrefix checks if the Trie contains the prefix
func (t *Trie) ContainsPrefix(s string) bool {
    return t.get(t.root, strings.ToLower(s), 0) != nil
}

// Len returns the number of distinct words stored.
func (t *Trie) Len() int {
    return t.size
}

// get retrieves a node for a given string
func (t *Trie) get(x *Node, s string, d int) *Node {
    if x == nil {
        return nil
    }
    if d == len(s) {
        return x
    }
    c := int(s[d]) - t.OFFSET
    if c < 0 || c > 25 {
        return nil
    }

    return t.get(x.Next[c], s, d+1)
}

// add2 adds a string to the Trie (helper function)
func (t *Trie) add2(x *Node, s string, d int) *Node {
    if x == nil {
        x = &Node{}
    }
    if d == len(s) {
        x.IsLast = true
        return x
    }
    c := int(s[d]) - t.OFFSET
    x.Next[c] = t.add2(x.Next[c], s, d+1)
    return x
}

func (t *Trie) valid(s string) bool {
    for i := 0; i < len(s); i++ {
        c := int(s[i]) - t.OFFSET
        if c < 0 || c > 25 {
            return false
        }
    }
    return true
}
