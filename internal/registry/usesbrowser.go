package registry

import "toolproof/internal/testdoc"

// StepsUseBrowser reports whether any step in steps resolves to a
// browser-tagged handler, the heuristic the scheduler uses to decide
// whether a test needs a page opened at all.
func (r *Registry) StepsUseBrowser(steps []testdoc.Step) bool {
	for _, st := range steps {
		sentence := st.Sentence
		if st.Kind == testdoc.KindSnapshot || st.Kind == testdoc.KindExtract {
			sentence = st.RetrievalSentence
		}
		if sentence == "" {
			continue
		}
		if r.UsesBrowser(sentence, st.Values) {
			return true
		}
	}
	return false
}
