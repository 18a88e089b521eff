package pagination

// PageDefaultSize is used when a request names no size.
const PageDefaultSize = 20

// PageMaxSize caps the size of a single page.
const PageMaxSize = 500
