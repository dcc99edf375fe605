package domain

import "time"

// Project is a named collection of documents, their chunks and the
// project's retrieval configuration. The name is the unique key.
//
// Invariant: every chunk's DocumentID refers to a document present in
// Documents. RemoveDocument maintains this by dropping the document's
// chunks with it.
type Project struct {
	// Name is the unique project key.
	Name string

	// Documents are the ingested files, in ingestion order.
	Documents []Document

	// Chunks are ordered by document, then OrderIndex within each document.
	Chunks []Chunk

	// Domain is the last-detected classification, cached across queries.
	Domain Domain

	// EmbeddingModel is the name of the model that produced the cached
	// chunk vectors. Empty means BM25-only mode.
	EmbeddingModel string

	// Revision increments on every structural mutation. A retrieval
	// index built at an older revision is stale.
	Revision int64

	// UpdatedAt is when the project last changed structurally.
	UpdatedAt time.Time
}

// NewProject creates an empty project in general domain.
func NewProject(name string) *Project {
	return &Project{
		Name:   name,
		Domain: DomainGeneral,
	}
}

// HasDocumentHash reports whether a document with the given content
// hash is already part of the project. This is the dedup check and runs
// before any chunking work.
func (p *Project) HasDocumentHash(hash string) bool {
	for i := range p.Documents {
		if p.Documents[i].ID == hash {
			return true
		}
	}
	return false
}

// DocumentByName returns the document with the given file name, or nil.
func (p *Project) DocumentByName(name string) *Document {
	for i := range p.Documents {
		if p.Documents[i].Name == name {
			return &p.Documents[i]
		}
	}
	return nil
}

// AppendDocument adds a document and its chunks and bumps the revision.
func (p *Project) AppendDocument(doc Document, chunks []Chunk) {
	p.Documents = append(p.Documents, doc)
	p.Chunks = append(p.Chunks, chunks...)
	p.touch()
}

// RemoveDocument deletes the named document and all of its chunks.
// It returns false if no document has that name.
func (p *Project) RemoveDocument(name string) bool {
	doc := p.DocumentByName(name)
	if doc == nil {
		return false
	}
	docID := doc.ID

	docs := p.Documents[:0]
	for i := range p.Documents {
		if p.Documents[i].Name != name {
			docs = append(docs, p.Documents[i])
		}
	}
	p.Documents = docs

	chunks := p.Chunks[:0]
	for i := range p.Chunks {
		if p.Chunks[i].DocumentID != docID {
			chunks = append(chunks, p.Chunks[i])
		}
	}
	p.Chunks = chunks

	p.touch()
	return true
}

// touch bumps the revision and timestamps the mutation.
func (p *Project) touch() {
	p.Revision++
	p.UpdatedAt = time.Now().UTC()
}
