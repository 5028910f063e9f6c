package sources

const guestSearchFixture = `
<li>
  <div class="base-card">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/python-developer-at-acme-3812345678?refId=abc&trackingId=xyz">
      <span class="sr-only">Python Developer</span>
    </a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">
        Python Developer
      </h3>
      <h4 class="base-search-card__subtitle">
        <a href="https://www.linkedin.com/company/acme">Acme Corp</a>
      </h4>
      <div class="base-search-card__metadata">
        <span class="job-search-card__location">Berlin, Germany</span>
        <time class="job-search-card__listdate" datetime="2024-05-02">2 days ago</time>
      </div>
      <p class="base-search-card__snippet">Build data pipelines   in Python.</p>
    </div>
  </div>
</li>
<li>
  <div class="base-card">
    <h3 class="base-search-card__title">Backend Engineer</h3>
    <time class="job-search-card__listdate--new">1 week ago</time>
  </div>
</li>
<li>
  <div class="base-card">
    <span>Promoted content without a title</span>
  </div>
</li>
<li>
  <div class="base-card">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/3899999999">link</a>
    <h3 class="base-search-card__title">Data Engineer</h3>
    <h4 class="base-search-card__subtitle">Globex</h4>
    <span class="job-search-card__location">Remote</span>
  </div>
</li>
`
